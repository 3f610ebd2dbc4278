package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
	lvrebal "machinerun.io/lvrebal"
	"machinerun.io/lvrebal/linux"
)

//nolint:gochecknoglobals
var listCommand = cli.Command{
	Name:   "list",
	Usage:  "List logical volumes.  Optionally restrict to one volume group.",
	Action: listLVs,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "vg",
			Usage: "Only list volumes in this volume group",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit json rather than a table",
		},
	},
}

func lvFilterFor(vgName string) lvrebal.LVFilter {
	if vgName == "" {
		return func(lv lvrebal.LV) bool { return true }
	}

	return func(lv lvrebal.LV) bool { return lv.VGName == vgName }
}

func scanLVs(vgName string) (lvrebal.LVSet, error) {
	return linux.VolumeManager().ScanLVs(lvFilterFor(vgName))
}

func listLVs(c *cli.Context) error {
	lvs, err := scanLVs(c.String("vg"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		jbytes, err := json.MarshalIndent(&lvs, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(jbytes))

		return nil
	}

	data := [][]string{{"VOLUME", "SIZE", "FSTYPE", "ACTIVE", "PATH"}}

	for _, lv := range lvs.Sorted() {
		active := "no"
		if lv.Active {
			active = "yes"
		}

		data = append(data, []string{
			lv.FullName(), lvrebal.HumanSize(lv.Size), lv.FSType, active, lv.Path})
	}

	printTextTable(data)

	return nil
}
