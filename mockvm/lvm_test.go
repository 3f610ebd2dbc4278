package mockvm_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	lvrebal "machinerun.io/lvrebal"
	"machinerun.io/lvrebal/mockvm"
)

const gib = lvrebal.Gibibyte

func TestScan(t *testing.T) {
	Convey("scanning the mock system", t, func() {
		sys := mockvm.Load("testdata/model_layout.json")
		So(sys, ShouldNotBeNil)

		vgs, err := sys.ScanVGs(nil)
		So(err, ShouldBeNil)
		So(vgs, ShouldContainKey, "vg0")
		So(vgs["vg0"].FreeSpace, ShouldEqual, 4*gib)
		So(vgs["vg0"].Volumes, ShouldHaveLength, 2)

		lvs, err := sys.ScanLVs(nil)
		So(err, ShouldBeNil)
		So(lvs, ShouldContainKey, "vg0/data")
		So(lvs["vg0/data"].Size, ShouldEqual, 50*gib)

		Convey("filters are honored", func() {
			lvs, err := sys.ScanLVs(func(lv lvrebal.LV) bool {
				return lv.Name == "logs"
			})
			So(err, ShouldBeNil)
			So(lvs, ShouldHaveLength, 1)

			vgs, err := sys.ScanVGs(func(vg lvrebal.VG) bool { return false })
			So(err, ShouldBeNil)
			So(vgs, ShouldBeEmpty)
		})

		Convey("scan results are copies", func() {
			vgs["vg0"].Volumes["data"] = lvrebal.LV{Name: "data", Size: 1}

			again, err := sys.ScanVGs(nil)
			So(err, ShouldBeNil)
			So(again["vg0"].Volumes["data"].Size, ShouldEqual, 50*gib)
		})
	})
}

func TestResize(t *testing.T) {
	Convey("resizing mock volumes", t, func() {
		sys := mockvm.Load("testdata/model_layout.json")

		Convey("reduce refuses to truncate the filesystem", func() {
			// filesystem still occupies the full 50GiB device
			err := sys.ReduceLV("vg0", "data", 40*gib)
			So(err, ShouldBeError)
		})

		Convey("reduce frees extents after the filesystem shrank", func() {
			data, _ := sys.ScanLVs(nil)
			lv := data["vg0/data"]

			So(sys.Unmount(lv.Path), ShouldBeNil)
			So(sys.Shrink(lv, 40*gib, false, ""), ShouldBeNil)
			So(sys.ReduceLV("vg0", "data", 40*gib), ShouldBeNil)

			vgs, _ := sys.ScanVGs(nil)
			So(vgs["vg0"].FreeSpace, ShouldEqual, 14*gib)
			So(vgs["vg0"].Volumes["data"].Size, ShouldEqual, 40*gib)
		})

		Convey("extend takes exactly from the free pool", func() {
			So(sys.ExtendLV("vg0", "logs", 12*gib), ShouldBeNil)

			vgs, _ := sys.ScanVGs(nil)
			So(vgs["vg0"].FreeSpace, ShouldEqual, 2*gib)
			So(vgs["vg0"].Volumes["logs"].Size, ShouldEqual, 12*gib)

			Convey("and fails loudly when the pool is short", func() {
				err := sys.ExtendLV("vg0", "logs", 20*gib)
				So(err, ShouldBeError)

				// nothing was silently adjusted
				vgs, _ := sys.ScanVGs(nil)
				So(vgs["vg0"].Volumes["logs"].Size, ShouldEqual, 12*gib)
			})
		})

		Convey("unknown volumes error", func() {
			So(sys.ReduceLV("vg0", "nope", gib), ShouldBeError)
			So(sys.ExtendLV("vgX", "logs", gib), ShouldBeError)
		})
	})
}

func TestMountsAndFS(t *testing.T) {
	Convey("mock mount table and filesystems", t, func() {
		sys := mockvm.Load("testdata/model_layout.json")

		mp, mounted, err := sys.MountPoint("/dev/vg0/data")
		So(err, ShouldBeNil)
		So(mounted, ShouldBeTrue)
		So(mp, ShouldEqual, "/srv/data")

		usage, err := sys.UsageAt("/srv/data")
		So(err, ShouldBeNil)
		So(usage.Used, ShouldEqual, 20*gib)
		So(usage.Size, ShouldEqual, 50*gib)

		_, err = sys.UsageAt("/nowhere")
		So(err, ShouldBeError)

		Convey("offline shrink requires an unmounted device", func() {
			lvs, _ := sys.ScanLVs(nil)
			lv := lvs["vg0/data"]

			So(sys.Shrink(lv, 40*gib, false, ""), ShouldBeError)
			So(sys.Unmount(lv.Path), ShouldBeNil)
			So(sys.Shrink(lv, 40*gib, false, ""), ShouldBeNil)
			So(sys.FSSize(lv.Path), ShouldEqual, 40*gib)
			So(sys.Mount(lv.Path, "/srv/data"), ShouldBeNil)
		})

		Convey("check failure injection", func() {
			lvs, _ := sys.ScanLVs(nil)
			So(sys.Check(lvs["vg0/data"]), ShouldBeNil)

			sys.CheckFails = map[string]bool{"/dev/vg0/data": true}
			So(sys.Check(lvs["vg0/data"]), ShouldBeError)
		})
	})
}
