package main

import (
	"context"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/supervisor"
)

// addSupervisor creates a supervisor account unless one with the same
// employee ID already exists.
func (cli *commandLine) addSupervisor(empID, name, email, pwd string, maxGroups int) error {
	ctx := context.Background()
	empID = core.CleanString(empID, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	ns := supervisor.NewSupervisor{
		EmpID:    empID,
		Name:     name,
		Email:    email,
		Password: pwd,
	}
	if err := cli.supSvc.CreateIfAbsent(ctx, ns); err != nil {
		return err
	}
	if maxGroups != supervisor.DefaultMaxGroups {
		sup, err := cli.supSvc.GetByEmpID(ctx, empID)
		if err != nil {
			return err
		}
		return cli.supSvc.UpdateMaxGroups(ctx, sup.EmpID, supervisor.UpdatePreference{MaxGroups: maxGroups})
	}
	return nil
}
