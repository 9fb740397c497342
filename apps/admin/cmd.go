package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kundi/core/supervisor"
	"github.com/trezcool/kundi/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *database.DB
	supSvc *supervisor.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|redo|status|version - apply schema migrations")
	fmt.Println("  addsupervisor -empid EMPID -name NAME -email EMAIL [-maxgroups N] - create a supervisor account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addSupCmd := flag.NewFlagSet("addsupervisor", flag.ExitOnError)
	addSupEmpID := addSupCmd.String("empid", "", "The supervisor's employee ID.")
	addSupName := addSupCmd.String("name", "", "The supervisor's full name.")
	addSupEmail := addSupCmd.String("email", "", "The supervisor's email. The password will be prompted next.")
	addSupMaxGroups := addSupCmd.Int("maxgroups", supervisor.DefaultMaxGroups, "Maximum number of groups the supervisor can take.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addsupervisor":
		if err := addSupCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSupEmpID == "" || *addSupName == "" || *addSupEmail == "" {
			addSupCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addSupCmd.Usage()
			return errHelp
		}
		return cli.addSupervisor(*addSupEmpID, *addSupName, *addSupEmail, string(pwd), *addSupMaxGroups)
	default:
		cli.printUsage()
		return errHelp
	}
}
