package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage construction projects",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			p := model.Project{
				Name:           f.str("name"),
				Customer:       f.str("customer"),
				StartDate:      f.date("start"),
				Status:         model.ParseProjectStatus(f.str("status")),
				TotalOtherCost: f.amount("other-cost"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddProject(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "project", created.ID)
			})
		},
	}
	add.Flags().String("name", "", "project name")
	add.Flags().String("customer", "", "customer name")
	add.Flags().String("start", "", "start date (YYYY-MM-DD, default today)")
	add.Flags().String("status", "active", "active, completed or on-hold")
	add.Flags().String("other-cost", "", "other costs not tracked elsewhere")
	_ = add.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a project's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				p, ok := a.engine.Ledger().Project(args[0])
				if !ok {
					return fmt.Errorf("project %s: %w", args[0], common.ErrNotFound)
				}
				f := readFlags(cmd)
				if cmd.Flags().Changed("name") {
					p.Name = f.str("name")
				}
				if cmd.Flags().Changed("customer") {
					p.Customer = f.str("customer")
				}
				if cmd.Flags().Changed("status") {
					p.Status = model.ParseProjectStatus(f.str("status"))
				}
				if cmd.Flags().Changed("other-cost") {
					p.TotalOtherCost = f.amount("other-cost")
				}
				if f.err != nil {
					return f.err
				}
				_, err := a.engine.UpdateProject(cmd.Context(), p)
				return err
			})
		},
	}
	update.Flags().String("name", "", "project name")
	update.Flags().String("customer", "", "customer name")
	update.Flags().String("status", "", "active, completed or on-hold")
	update.Flags().String("other-cost", "", "other costs not tracked elsewhere")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects with their profit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, r := range ledger.ProjectPL(a.engine.Ledger()) {
					p := r.Project
					rows = append(rows, []string{
						p.ID, p.Name, p.Customer, string(p.Status),
						money(p.TotalBilled), money(p.TotalReceived), money(r.Profit),
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"ID", "Name", "Customer", "Status", "Billed", "Received", "Profit"}, rows)
			})
		},
	}

	cmd.AddCommand(add, update, list, deleteCmd("project", func(a *app, cmd *cobra.Command, id string) error {
		return a.engine.DeleteProject(cmd.Context(), id)
	}))
	return cmd
}

func itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the material catalog",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			m := model.MaterialItem{
				Name:        f.str("name"),
				Unit:        f.str("unit"),
				Description: f.str("description"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddMaterialItem(cmd.Context(), m)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "item", created.ID)
			})
		},
	}
	add.Flags().String("name", "", "material name")
	add.Flags().String("unit", "", "unit of measure, e.g. bag or ton")
	add.Flags().String("description", "", "description")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, m := range a.engine.Ledger().MaterialItems {
					rows = append(rows, []string{m.ID, m.Name, m.Unit, m.Description})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Unit", "Description"}, rows)
			})
		},
	}

	cmd.AddCommand(add, list, deleteCmd("item", func(a *app, cmd *cobra.Command, id string) error {
		return a.engine.DeleteMaterialItem(cmd.Context(), id)
	}))
	return cmd
}

func supplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Manage suppliers and supplier payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a supplier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			s := model.Supplier{
				Name:    f.str("name"),
				Phone:   f.str("phone"),
				Address: f.str("address"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddSupplier(cmd.Context(), s)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "supplier", created.ID)
			})
		},
	}
	add.Flags().String("name", "", "supplier name")
	add.Flags().String("phone", "", "phone number")
	add.Flags().String("address", "", "address")
	_ = add.MarkFlagRequired("name")

	pay := &cobra.Command{
		Use:   "pay SUPPLIER_ID",
		Short: "Record a payment to a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := readFlags(cmd)
			p := model.SupplierPayment{
				SupplierID:  args[0],
				Date:        f.date("date"),
				Amount:      f.amount("amount"),
				PaymentMode: f.mode("mode", model.ModeBank),
				Description: f.str("note"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddSupplierPayment(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "supplier payment", created.ID)
			})
		},
	}
	paymentFlags(pay)
	pay.Flags().String("note", "", "description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List suppliers with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, b := range ledger.SupplierBalances(a.engine.Ledger()) {
					s := b.Supplier
					rows = append(rows, []string{s.ID, s.Name, s.Phone, money(s.TotalPurchased), money(s.TotalPaid), money(b.Pending)})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Phone", "Purchased", "Paid", "Pending"}, rows)
			})
		},
	}

	cmd.AddCommand(add, pay, list, deleteCmd("supplier", func(a *app, cmd *cobra.Command, id string) error {
		return a.engine.DeleteSupplier(cmd.Context(), id)
	}))
	return cmd
}

func purchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record material deliveries to projects",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a material purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			m := model.MaterialPurchase{
				Date:           f.date("date"),
				ProjectID:      f.str("project"),
				SupplierID:     f.str("supplier"),
				MaterialItemID: f.str("item"),
				Material:       f.str("material"),
				Unit:           f.str("unit"),
				Quantity:       f.amount("qty"),
				UnitPrice:      f.amount("price"),
				TotalAmount:    f.amount("total"),
				AmountPaid:     f.amount("paid"),
			}
			if f.err != nil {
				return f.err
			}
			return withApp(cmd.Context(), func(a *app) error {
				created, err := a.engine.AddMaterial(cmd.Context(), m)
				if err != nil {
					return err
				}
				return printCreated(cmd.OutOrStdout(), "purchase", created.ID)
			})
		},
	}
	add.Flags().String("project", "", "project id")
	add.Flags().String("supplier", "", "supplier id")
	add.Flags().String("item", "", "catalog item id")
	add.Flags().String("material", "", "material name (defaults to the item's name)")
	add.Flags().String("unit", "", "unit (defaults to the item's unit)")
	add.Flags().String("qty", "", "quantity")
	add.Flags().String("price", "", "unit price")
	add.Flags().String("total", "", "total amount (default qty x price)")
	add.Flags().String("paid", "", "amount paid on delivery")
	add.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	_ = add.MarkFlagRequired("project")

	list := &cobra.Command{
		Use:   "list",
		Short: "List material purchases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, _ := cmd.Flags().GetString("project")
			return withApp(cmd.Context(), func(a *app) error {
				var rows [][]string
				for _, m := range a.engine.Ledger().Materials {
					if project != "" && m.ProjectID != project {
						continue
					}
					rows = append(rows, []string{
						sheets.FormatDay(m.Date), m.ProjectName, m.Material, m.Supplier,
						m.Quantity.String() + " " + m.Unit, money(m.TotalAmount),
					})
				}
				return printTable(cmd.OutOrStdout(), []string{"Date", "Project", "Material", "Supplier", "Quantity", "Total"}, rows)
			})
		},
	}
	list.Flags().String("project", "", "only this project")

	cmd.AddCommand(add, list)
	return cmd
}

// deleteCmd builds the "delete ID" subcommand of an entity.
func deleteCmd(entity string, del func(a *app, cmd *cobra.Command, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + entity + " nothing refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				return del(a, cmd, args[0])
			})
		},
	}
}

// paymentFlags adds the flags shared by every payment command.
func paymentFlags(cmd *cobra.Command) {
	cmd.Flags().String("amount", "", "amount paid")
	cmd.Flags().String("mode", "", "cash, bank or upi")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("amount")
}
