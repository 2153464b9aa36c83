package qdevice

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGateTable(t *testing.T) {
	Convey("Given the gate table", t, func() {
		Convey("Every gate has an entry that parses back to itself", func() {
			for g := Gate(0); g < gateCount; g++ {
				spec := g.spec()
				So(spec.name, ShouldNotBeEmpty)

				parsed, err := ParseGate(g.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, g)
			}
			So(len(gatesByName), ShouldEqual, int(gateCount))
		})

		Convey("Sugar entries resolve to a dispatchable base gate", func() {
			for g := Gate(0); g < gateCount; g++ {
				spec := g.spec()
				base := spec.base.spec()
				So(base.arity, ShouldEqual, 0)
				So(base.base, ShouldEqual, spec.base)

				if base.kind == dispatchPauli || base.kind == dispatchSingle || base.kind == dispatchMultiRZ {
					So(base.single, ShouldNotBeNil)
				}
			}
		})

		Convey("Unknown names are domain errors", func() {
			_, err := ParseGate("Frobnicate")
			So(errors.Is(err, ErrDomain), ShouldBeTrue)
			So(Gate(-1).String(), ShouldEqual, "Unknown")
		})

		Convey("Phase gates carry the textbook phases", func() {
			s := sPhase(nil, false)
			So(s.bottomRight, ShouldEqual, complex(0, 1))
			So(sPhase(nil, true).bottomRight, ShouldEqual, complex(0, -1))

			tg := tPhase(nil, false)
			So(real(tg.bottomRight), ShouldAlmostEqual, 0.7071067811865476, 1e-12)
			So(imag(tg.bottomRight), ShouldAlmostEqual, 0.7071067811865476, 1e-12)
		})
	})
}
