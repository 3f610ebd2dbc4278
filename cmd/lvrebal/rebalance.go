package main

import (
	"fmt"
	"os"
	"path"

	"github.com/urfave/cli/v2"
	lvrebal "machinerun.io/lvrebal"
	"machinerun.io/lvrebal/linux"
	"machinerun.io/lvrebal/mockvm"
)

//nolint:gochecknoglobals
var rebalanceCommand = cli.Command{
	Name:   "rebalance",
	Usage:  "Shrink one volume and extend another by the freed amount",
	Action: rebalance,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "vg",
			Usage:    "Volume group to rebalance within",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Volume to shrink.  Prompted for when not given.",
		},
		&cli.StringFlag{
			Name:  "target",
			Usage: "Volume to extend.  Prompted for when not given.",
		},
		&cli.StringFlag{
			Name:  "size",
			Usage: "Amount to move, e.g. 10G.  Prompted for when not given.",
		},
		&cli.StringFlag{
			Name:  "lock-dir",
			Value: linux.DefaultLockDir,
			Usage: "Directory for the per volume group lock file",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Replay the plan against an in-memory model of the scanned system",
		},
	},
}

// resolveLV finds a volume named on the command line, accepting both "lv"
// and "vg/lv" forms.
func resolveLV(lvs lvrebal.LVSet, vgName, name string) (lvrebal.LV, error) {
	full := name
	if path.Dir(name) == "." {
		full = path.Join(vgName, name)
	}

	lv, ok := lvs[full]
	if !ok {
		return lvrebal.LV{}, fmt.Errorf("no logical volume %s", full)
	}

	return lv, nil
}

func pickLV(c *cli.Context, ask lvrebal.Asker, lvs lvrebal.LVSet, flag, prompt string) (lvrebal.LV, error) {
	if name := c.String(flag); name != "" {
		return resolveLV(lvs, c.String("vg"), name)
	}

	return lvrebal.ChooseLV(ask, os.Stdout, lvs, prompt)
}

func askSize(c *cli.Context, ask lvrebal.Asker) (uint64, error) {
	if size := c.String("size"); size != "" {
		return lvrebal.ParseSize(size)
	}

	answer, err := ask("amount to move (e.g. 10G): ")
	if err != nil {
		return 0, err
	}

	return lvrebal.ParseSize(answer)
}

//nolint:funlen
func rebalance(c *cli.Context) error {
	cfg := lvrebal.Config{
		VGName:  c.String("vg"),
		LockDir: c.String("lock-dir"),
		DryRun:  c.Bool("dry-run"),
	}

	vmgr := linux.VolumeManager()
	fsTool := linux.FSTool()
	mounts := linux.MountTable()

	vgs, err := vmgr.ScanVGs(func(vg lvrebal.VG) bool { return vg.Name == cfg.VGName })
	if err != nil {
		return err
	}

	vg, ok := vgs[cfg.VGName]
	if !ok {
		return fmt.Errorf("volume group %s not found", cfg.VGName)
	}

	lvs, err := vmgr.ScanLVs(lvFilterFor(cfg.VGName))
	if err != nil {
		return err
	}

	ask := lvrebal.TerminalAsker(os.Stdin, os.Stdout)

	source, err := pickLV(c, ask, lvs, "source", "select the volume to shrink:")
	if err != nil {
		return err
	}

	target, err := pickLV(c, ask, lvs, "target", "select the volume to extend:")
	if err != nil {
		return err
	}

	usageReporter := lvrebal.NewRebalancer(vmgr, fsTool, mounts, nil)

	for _, lv := range []lvrebal.LV{source, target} {
		usage, err := usageReporter.Usage(lv)
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %10s  %s\n",
			lv.FullName(), lvrebal.HumanSize(lv.Size), usage.String())
	}

	delta, err := askSize(c, ask)
	if err != nil {
		return err
	}

	extentSize := vg.ExtentSize
	if extentSize == 0 {
		extentSize = lvrebal.DefaultExtentSize
	}

	plan, err := lvrebal.NewPlan(source, target, delta, extentSize)
	if err != nil {
		return err
	}

	fmt.Printf("plan: shrink %s by %s, extend %s by the same\n",
		plan.Source.FullName(), lvrebal.HumanSize(plan.Delta), plan.Target.FullName())

	if cfg.DryRun {
		return dryRun(c, plan, vgs, lvs, fsTool, mounts, ask)
	}

	lock, err := linux.LockVG(cfg.LockDir, cfg.VGName)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	reb := lvrebal.NewRebalancer(vmgr, fsTool, mounts, ask)
	reb.Log = getLogger(c)

	return reb.Execute(plan)
}

// dryRun replays the plan against an in-memory model seeded from the live
// scan. The model enforces the same ordering hazards the real system has, so
// a plan that would truncate data fails here too.
func dryRun(c *cli.Context, plan lvrebal.Plan, vgs lvrebal.VGSet,
	lvs lvrebal.LVSet, fsTool lvrebal.FSTool, mounts lvrebal.MountTable,
	ask lvrebal.Asker) error {
	mountsMap := map[string]string{}
	usedMap := map[string]uint64{}

	for _, lv := range lvs {
		mp, mounted, err := mounts.MountPoint(lv.Path)
		if err != nil {
			return err
		}

		if !mounted {
			continue
		}

		mountsMap[lv.Path] = mp

		if usage, err := fsTool.UsageAt(mp); err == nil {
			usedMap[lv.Path] = usage.Used
		}
	}

	sys := mockvm.FromScan(vgs, mountsMap, usedMap)

	reb := lvrebal.NewRebalancer(sys, sys, sys, ask)
	reb.Log = getLogger(c)

	if err := reb.Execute(plan); err != nil {
		return fmt.Errorf("dry run failed: %w", err)
	}

	after, err := sys.ScanVGs(nil)
	if err != nil {
		return err
	}

	fmt.Printf("dry run ok, resulting layout:\n%s", after.Details())

	return nil
}
