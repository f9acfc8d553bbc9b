package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func employeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage salaried staff and salary payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			em := model.Employee{
				Name:      f.str("name"),
				Role:      f.str("role"),
				Salary:    f.amount("salary"),
				ProjectID: f.str("project"),
			}
			if f.err != nil {
				return f.err
			}
			if em.ProjectID != "" {
				em.AssignedTo = model.AssignedProject
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddEmployee(cmd.Context(), em)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "employee", created.ID)
			})
		},
	}
	add.Flags().String("name", "", "employee name")
	add.Flags().String("role", "", "role, e.g. site engineer")
	add.Flags().String("salary", "", "monthly salary")
	add.Flags().String("project", "", "project id the salary is booked against (default office)")
	_ = add.MarkFlagRequired("name")

	pay := &cobra.Command{
		Use:   "pay EMPLOYEE_ID",
		Short: "Record a salary payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := readFlags(cmd)
			s := model.SalaryPayment{
				EmployeeID:  args[0],
				Date:        f.date("date"),
				Amount:      f.amount("amount"),
				Month:       f.str("month"),
				PaymentMode: f.mode("mode", model.ModeBank),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddSalaryPayment(cmd.Context(), s)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "salary payment", created.ID)
			})
		},
	}
	paymentFlags(pay)
	pay.Flags().String("month", "", "salary month (YYYY-MM, default the payment month)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List employees and the monthly salary split",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				l := a.engine.Ledger()
				var rows [][]string
				for _, em := range l.Employees {
					booked := string(em.AssignedTo)
					if em.AssignedTo == model.AssignedProject {
						booked = em.ProjectName
					}
					rows = append(rows, []string{em.ID, em.Name, em.Role, booked, money(em.Salary)})
				}
				if err := printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Role", "Booked to", "Salary"}, rows); err != nil {
					return err
				}
				split := ledger.SalaryCostSplit(l)
				return printTable(cmd.OutOrStdout(), []string{"Project salaries", "Office salaries"},
					[][]string{{money(split.Project), money(split.Office)}})
			})
		},
	}

	payments := &cobra.Command{
		Use:   "payments",
		Short: "List salary payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, s := range a.engine.Ledger().SalaryPayments {
					rows = append(rows, []string{
						sheets.FormatDay(s.Date), s.EmployeeName, s.Month, string(s.CostType), s.ProjectName, money(s.Amount),
					})
				}
				return printTable(cmd.OutOrStdout(), []string{"Date", "Employee", "Month", "Cost", "Project", "Amount"}, rows)
			})
		},
	}

	cmd.AddCommand(add, pay, list, payments)
	return cmd
}
