package main

import (
	"context"
	"testing"

	"github.com/trezcool/kundi/core/supervisor"
	dummydb "github.com/trezcool/kundi/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return &commandLine{
		supSvc: supervisor.NewService(dummydb.NewSupervisorRepository(db)),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "addsupervisor: no args", args: []string{"addsupervisor"}, wantErr: errHelp},
		{name: "addsupervisor: missing email", args: []string{"addsupervisor", "-empid", "emp42", "-name", "Jane"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addSupervisor(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cure-Enough"), nil }

	args := []string{"admin", "addsupervisor", "-empid", "EMP42", "-name", "Jane Banda", "-email", "jane@test.cd"}
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run(): %v", err)
	}

	sup, err := cli.supSvc.GetByEmpID(ctx, "emp42")
	if err != nil {
		t.Fatalf("GetByEmpID(): %v", err)
	}
	if sup.Email != "jane@test.cd" {
		t.Errorf("email = %s, want jane@test.cd", sup.Email)
	}
	if sup.MaxGroups != supervisor.DefaultMaxGroups {
		t.Errorf("maxGroups = %d, want %d", sup.MaxGroups, supervisor.DefaultMaxGroups)
	}
	if err := sup.CheckPassword("s3cure-Enough"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}

	// running again with a different name is a no-op
	args = []string{"admin", "addsupervisor", "-empid", "emp42", "-name", "Someone Else", "-email", "other@test.cd"}
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run(): %v", err)
	}
	sup, _ = cli.supSvc.GetByEmpID(ctx, "emp42")
	if sup.Name != "Jane Banda" {
		t.Errorf("name = %s, want Jane Banda", sup.Name)
	}

	// -maxgroups overrides the default
	args = []string{"admin", "addsupervisor", "-empid", "emp43", "-name", "Ben Phiri", "-email", "ben@test.cd", "-maxgroups", "2"}
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run(): %v", err)
	}
	sup, _ = cli.supSvc.GetByEmpID(ctx, "emp43")
	if sup.MaxGroups != 2 {
		t.Errorf("maxGroups = %d, want 2", sup.MaxGroups)
	}
}

func Test_commandLine_addSupervisor_emptyPassword(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return nil, nil }

	args := []string{"admin", "addsupervisor", "-empid", "emp42", "-name", "Jane Banda", "-email", "jane@test.cd"}
	if err := cli.run(args); err != errHelp {
		t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
	}
}
