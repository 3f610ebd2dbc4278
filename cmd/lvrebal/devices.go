package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
	lvrebal "machinerun.io/lvrebal"
	"machinerun.io/lvrebal/linux"
)

//nolint:gochecknoglobals
var devicesCommand = cli.Command{
	Name:   "devices",
	Usage:  "Report the block devices backing the volume groups",
	Action: listDevices,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "vg",
			Usage: "Only report devices of this volume group",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit json rather than a table",
		},
	},
}

func listDevices(c *cli.Context) error {
	vgName := c.String("vg")

	vgs, err := linux.VolumeManager().ScanVGs(func(vg lvrebal.VG) bool {
		return vgName == "" || vg.Name == vgName
	})
	if err != nil {
		return err
	}

	pvs := lvrebal.PVSet{}
	for _, vg := range vgs {
		for name, pv := range vg.PVs {
			pvs[name] = pv
		}
	}

	devices, err := linux.ScanDevices(pvs)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		jbytes, err := json.MarshalIndent(devices, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(jbytes))

		return nil
	}

	data := [][]string{{"PATH", "VG", "SIZE", "TABLE", "MODEL", "MOUNTPOINT"}}

	for _, dev := range devices {
		data = append(data, []string{
			dev.Path, dev.VGName, lvrebal.HumanSize(dev.Size),
			string(dev.Table), dev.Model, dev.MountPoint})
	}

	printTextTable(data)

	return nil
}
