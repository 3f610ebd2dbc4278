package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
	lvrebal "machinerun.io/lvrebal"
	"machinerun.io/lvrebal/linux"
)

//nolint:gochecknoglobals
var reportCommand = cli.Command{
	Name:   "report",
	Usage:  "Report filesystem usage of logical volumes",
	Action: reportUsage,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "vg",
			Usage: "Only report volumes in this volume group",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit json rather than a table",
		},
	},
}

type usageRow struct {
	Volume string        `json:"volume"`
	Size   uint64        `json:"size"`
	Usage  lvrebal.Usage `json:"usage"`
}

func reportUsage(c *cli.Context) error {
	lvs, err := scanLVs(c.String("vg"))
	if err != nil {
		return err
	}

	reb := lvrebal.NewRebalancer(
		linux.VolumeManager(), linux.FSTool(), linux.MountTable(), nil)

	rows := make([]usageRow, 0, len(lvs))

	for _, lv := range lvs.Sorted() {
		usage, err := reb.Usage(lv)
		if err != nil {
			return err
		}

		rows = append(rows, usageRow{Volume: lv.FullName(), Size: lv.Size, Usage: usage})
	}

	if c.Bool("json") {
		jbytes, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(jbytes))

		return nil
	}

	data := [][]string{{"VOLUME", "SIZE", "USAGE"}}

	for _, row := range rows {
		data = append(data, []string{
			row.Volume, lvrebal.HumanSize(row.Size), row.Usage.String()})
	}

	printTextTable(data)

	return nil
}
