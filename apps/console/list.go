package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/student"
)

func (cli *console) gradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List the grades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grades, err := cli.client.Grades(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "listing grades")
			}
			for _, g := range grades {
				fmt.Fprintln(cli.out, g)
			}
			return nil
		},
	}
}

func (cli *console) subjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List the subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subjects, err := cli.client.Subjects(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "listing subjects")
			}
			cli.printSubjects(subjects)
			return nil
		},
	}

	var ns student.NewSubject
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a subject (admins only)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns.Name = strings.Join(args, " ")
			sub, err := cli.client.CreateSubject(cmd.Context(), ns)
			if err != nil {
				return errors.Wrap(err, "adding subject")
			}
			fmt.Fprintf(cli.out, "Subject %q added.\n", sub.Name)
			return nil
		},
	}
	add.Flags().Float64Var(&ns.Fee, "fee", 0, "monthly fee")
	add.Flags().StringVar(&ns.Color, "color", "", "hex color, e.g. #2196f3")
	cmd.AddCommand(add)
	return cmd
}

func (cli *console) printSubjects(subjects []student.Subject) {
	tbl := newTable("NAME", "FEE")
	for _, sub := range subjects {
		tbl.addRow(sub.Name, strconv.FormatFloat(sub.Fee, 'f', 2, 64))
	}
	fmt.Fprint(cli.out, tbl.render(cli.style))
}

func (cli *console) studentsCmd() *cobra.Command {
	var filter student.Filter
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List one page of students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := cli.client.Students(cmd.Context(), filter)
			if err != nil {
				return errors.Wrap(err, "listing students")
			}

			tbl := newTable("ID", "NAME", "GRADE", "SUBJECTS")
			for _, stu := range page.Students {
				tbl.addRow(stu.ID, stu.Name, stu.Grade, subjectNames(stu))
			}
			fmt.Fprint(cli.out, tbl.render(cli.style))
			fmt.Fprintln(cli.out, pageFooter(max(filter.Page, 1), page.TotalPages))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Grade, "grade", "", "only students of this grade")
	cmd.Flags().StringVar(&filter.Subject, "subject", "", "only students taking this subject")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "match name or id")
	cmd.Flags().IntVarP(&filter.Page, "page", "p", 1, "page number")
	return cmd
}

func (cli *console) teachersCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "teachers",
		Short: "List teacher accounts (admins only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			teachers, err := cli.client.Teachers(cmd.Context(), search)
			if err != nil {
				return errors.Wrap(err, "listing teachers")
			}
			tbl := newTable("ID", "USERNAME", "NAME", "EMAIL", "LAST LOGIN")
			for _, acc := range teachers {
				lastLogin := "never"
				if !acc.LastLogin.IsZero() {
					lastLogin = acc.LastLogin.Local().Format("2006-01-02 15:04")
				}
				tbl.addRow(acc.ID, acc.Username, acc.Name, acc.Email, lastLogin)
			}
			fmt.Fprint(cli.out, tbl.render(cli.style))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name, username or email")

	var na account.NewAccount
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a teacher account; the password is prompted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			na.Name = strings.Join(args, " ")
			pwd, err := cli.readPassword("New password: ")
			if err != nil {
				return err
			}
			confirm, err := cli.readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			na.Password, na.PasswordConfirm = pwd, confirm

			acc, err := cli.client.CreateTeacher(cmd.Context(), na)
			if err != nil {
				return errors.Wrap(err, "adding teacher")
			}
			fmt.Fprintf(cli.out, "Teacher %q added (id %s).\n", acc.Name, acc.ID)
			return nil
		},
	}
	add.Flags().StringVar(&na.Username, "login", "", "username of the new account")
	add.Flags().StringVar(&na.Email, "email", "", "email of the new account")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a teacher account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.client.DeleteTeacher(cmd.Context(), args[0]); err != nil {
				return errors.Wrap(err, "deleting teacher")
			}
			fmt.Fprintln(cli.out, "Teacher deleted.")
			return nil
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func subjectNames(stu student.Student) string {
	names := make([]string, 0, len(stu.Subjects))
	for _, enr := range stu.Subjects {
		names = append(names, enr.Subject)
	}
	return strings.Join(names, ", ")
}

func pageFooter(page, total int) string {
	if total == 0 {
		return "No students."
	}
	return fmt.Sprintf("Page %d of %d", page, total)
}
