package lvrebal

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Rebalancer executes a Plan against a system: shrink the source, verify the
// freed extents, extend the target. Execution is strictly sequential and
// never rolls back: every check happens before the mutation it guards, and a
// failure after a mutation is surfaced, not undone.
type Rebalancer struct {
	// VolMgr queries and resizes logical volumes.
	VolMgr VolumeManager

	// FS checks and resizes filesystems.
	FS FSTool

	// Mounts answers and changes mount state.
	Mounts MountTable

	// Ask is the confirmation gate consulted before each destructive step.
	// With no Asker every gate answers no and the run aborts.
	Ask Asker

	// Log receives step level progress. Defaults to a nop logger.
	Log *zap.Logger
}

// NewRebalancer builds a Rebalancer over the given collaborators.
func NewRebalancer(vm VolumeManager, fs FSTool, mounts MountTable, ask Asker) *Rebalancer {
	return &Rebalancer{
		VolMgr: vm,
		FS:     fs,
		Mounts: mounts,
		Ask:    ask,
		Log:    zap.NewNop(),
	}
}

func (r *Rebalancer) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}

	return r.Log
}

// Usage reports the current size and filesystem usage of a volume. It is
// read-only and never mutates state; an unmounted volume reports
// Mounted=false rather than an error.
func (r *Rebalancer) Usage(lv LV) (Usage, error) {
	mp, mounted, err := r.Mounts.MountPoint(lv.Path)
	if err != nil {
		return Usage{}, errors.Wrapf(err, "querying mount state of %s", lv.Path)
	}

	if !mounted {
		return Usage{Mounted: false}, nil
	}

	usage, err := r.FS.UsageAt(mp)
	if err != nil {
		return Usage{}, errors.Wrapf(err, "querying usage of %s at %s", lv.FullName(), mp)
	}

	usage.Mounted = true
	usage.MountPoint = mp

	return usage, nil
}

func (r *Rebalancer) scanVG(name string) (VG, error) {
	vgs, err := r.VolMgr.ScanVGs(func(vg VG) bool { return vg.Name == name })
	if err != nil {
		return VG{}, errors.Wrapf(err, "scanning vg %s", name)
	}

	vg, ok := vgs[name]
	if !ok {
		return VG{}, &PreconditionError{LV: name, Reason: "volume group not found"}
	}

	return vg, nil
}

// Execute runs the plan: shrink source, verify the free pool grew by exactly
// the delta, then extend target and grow its filesystem. Returns nil only
// when every step succeeded.
func (r *Rebalancer) Execute(plan Plan) error {
	log := r.logger().With(
		zap.String("source", plan.Source.FullName()),
		zap.String("target", plan.Target.FullName()),
		zap.Uint64("delta", plan.Delta))

	log.Info("executing rebalance plan")

	if err := r.shrink(plan, log); err != nil {
		return err
	}

	if err := r.extend(plan, log); err != nil {
		return err
	}

	log.Info("rebalance complete")

	return nil
}

// shrink walks the shrink state machine for the plan's source volume:
// Mounted -> SafetyCheck -> {OnlineShrink | OfflineShrink} -> Verified ->
// Done. Any check failure aborts before the guarded mutation.
func (r *Rebalancer) shrink(plan Plan, log *zap.Logger) error {
	src := plan.Source
	newSize := src.Size - plan.Delta
	state := Mounted

	fail := func(err error) error {
		log.Warn("shrink aborted", zap.Stringer("state", state), zap.Error(err))
		return err
	}

	step := func(err error) error {
		return fail(&StepError{LV: src.FullName(), State: state, Err: err})
	}

	vgBefore, err := r.scanVG(src.VGName)
	if err != nil {
		return fail(err)
	}

	mp, mounted, err := r.Mounts.MountPoint(src.Path)
	if err != nil {
		return step(err)
	}

	log.Info("shrink starting",
		zap.Bool("mounted", mounted),
		zap.String("mountPoint", mp),
		zap.Uint64("newSize", newSize))

	state = SafetyCheck

	if !r.FS.CanShrink(src.FSType) {
		return fail(&PreconditionError{
			LV:     src.FullName(),
			Reason: fmt.Sprintf("filesystem %q cannot be shrunk", src.FSType),
		})
	}

	minSize, err := r.FS.MinSize(src, mp)
	if err != nil {
		return step(err)
	}

	// The filesystem must never be told to shrink below what it occupies.
	if newSize < minSize {
		return fail(&PreconditionError{
			LV: src.FullName(),
			Reason: fmt.Sprintf(
				"shrinking by %s needs the filesystem at %s, but it occupies %s",
				HumanSize(plan.Delta), HumanSize(newSize), HumanSize(minSize)),
		})
	}

	if !Confirm(r.Ask, fmt.Sprintf("shrink %s from %s to %s?",
		src.FullName(), HumanSize(src.Size), HumanSize(newSize))) {
		return fail(ErrDeclined)
	}

	shrunk := false

	if mounted && r.FS.CanShrinkOnline(src.FSType) {
		state = OnlineShrink

		if err := r.FS.Shrink(src, newSize, true, mp); err != nil {
			// Fall back to the offline path.
			log.Warn("online shrink failed, falling back to offline",
				zap.Error(err))
		} else {
			shrunk = true
		}
	}

	if !shrunk {
		state = OfflineShrink

		if mounted {
			if err := r.Mounts.Unmount(src.Path); err != nil {
				return step(err)
			}
		}

		if err := r.FS.Check(src); err != nil {
			// Consistency failure is fatal. The volume is left unmounted
			// and untouched; remounting a filesystem that failed its check
			// would be a mutation of its own.
			state = Aborted

			return fail(&ConsistencyError{
				LV:      src.FullName(),
				Mounted: false,
				Err:     err,
			})
		}

		if err := r.FS.Shrink(src, newSize, false, mp); err != nil {
			return step(err)
		}
	}

	// The filesystem now fits in newSize; the LV may follow it down.
	if err := r.VolMgr.ReduceLV(src.VGName, src.Name, newSize); err != nil {
		return step(err)
	}

	if !shrunk && mounted {
		if err := r.Mounts.Mount(src.Path, mp); err != nil {
			return step(err)
		}
	}

	state = Verified

	vgAfter, err := r.scanVG(src.VGName)
	if err != nil {
		return fail(err)
	}

	if vgAfter.FreeSpace != vgBefore.FreeSpace+plan.Delta {
		return step(fmt.Errorf(
			"free pool went %d -> %d, expected +%d",
			vgBefore.FreeSpace, vgAfter.FreeSpace, plan.Delta))
	}

	state = Done

	log.Info("shrink done", zap.Uint64("freed", plan.Delta))

	return nil
}

// extend grows the target by exactly the plan's delta. It re-scans the
// volume group first: if the expected free extents are not there, it fails
// loudly instead of extending by a silently reduced amount.
func (r *Rebalancer) extend(plan Plan, log *zap.Logger) error {
	tgt := plan.Target

	vg, err := r.scanVG(tgt.VGName)
	if err != nil {
		return err
	}

	if vg.FreeSpace < plan.Delta {
		return &PreconditionError{
			LV: tgt.FullName(),
			Reason: fmt.Sprintf("volume group %s has %s free, need %s",
				vg.Name, HumanSize(vg.FreeSpace), HumanSize(plan.Delta)),
		}
	}

	cur, ok := vg.Volumes[tgt.Name]
	if !ok {
		return &PreconditionError{LV: tgt.FullName(), Reason: "volume disappeared"}
	}

	newSize := cur.Size + plan.Delta

	if !Confirm(r.Ask, fmt.Sprintf("extend %s from %s to %s?",
		tgt.FullName(), HumanSize(cur.Size), HumanSize(newSize))) {
		return ErrDeclined
	}

	if err := r.VolMgr.ExtendLV(tgt.VGName, tgt.Name, newSize); err != nil {
		return errors.Wrapf(err, "extending %s", tgt.FullName())
	}

	mp, _, err := r.Mounts.MountPoint(tgt.Path)
	if err != nil {
		return errors.Wrapf(err, "querying mount state of %s", tgt.Path)
	}

	if err := r.FS.Grow(tgt, mp); err != nil {
		return errors.Wrapf(err, "growing filesystem on %s", tgt.FullName())
	}

	log.Info("extend done",
		zap.String("volume", tgt.FullName()),
		zap.Uint64("newSize", newSize))

	return nil
}
