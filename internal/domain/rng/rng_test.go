package rng_test

import (
	"testing"

	"github.com/Tencide/matsim/internal/domain/rng"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSourceDeterminism(t *testing.T) {
	Convey("Given two sources with the same seed", t, func() {
		a := rng.New(42)
		b := rng.New(42)

		Convey("Then they produce identical raw draws", func() {
			for i := 0; i < 100; i++ {
				So(a.Next(), ShouldEqual, b.Next())
			}
		})

		Convey("And identical float draws", func() {
			for i := 0; i < 100; i++ {
				So(a.Float64(), ShouldEqual, b.Float64())
			}
		})

		Convey("And identical normal deviates", func() {
			for i := 0; i < 100; i++ {
				So(a.Normal(), ShouldEqual, b.Normal())
			}
		})
	})

	Convey("Given sources with different seeds", t, func() {
		a := rng.New(1)
		b := rng.New(2)

		Convey("Then the sequences diverge", func() {
			So(a.Next(), ShouldNotEqual, b.Next())
		})
	})

	Convey("Given a string seed", t, func() {
		a := rng.NewFromString("S1")
		b := rng.NewFromString("S1")
		c := rng.NewFromString("S2")

		Convey("Then equal strings yield equal sequences", func() {
			So(a.Next(), ShouldEqual, b.Next())
		})

		Convey("And different strings diverge", func() {
			So(rng.NewFromString("S1").Next(), ShouldNotEqual, c.Next())
		})
	})
}

func TestSourceStateRoundTrip(t *testing.T) {
	Convey("Given a source that has consumed draws", t, func() {
		src := rng.New(7)
		for i := 0; i < 13; i++ {
			src.Next()
		}

		Convey("When its state is serialized mid-sequence", func() {
			state := src.State()
			restored, err := rng.Restore(state)
			So(err, ShouldBeNil)

			Convey("Then the restored source continues the same sequence", func() {
				for i := 0; i < 50; i++ {
					So(restored.Next(), ShouldEqual, src.Next())
				}
			})
		})

		Convey("When restoring garbage", func() {
			_, err := rng.Restore("not-hex")

			Convey("Then a malformed state error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "malformed rng state")
			})
		})
	})
}

func TestSourceDraws(t *testing.T) {
	Convey("Given a seeded source", t, func() {
		src := rng.New(99)

		Convey("Then Float64 stays in [0,1)", func() {
			for i := 0; i < 1000; i++ {
				v := src.Float64()
				So(v, ShouldBeGreaterThanOrEqualTo, 0)
				So(v, ShouldBeLessThan, 1)
			}
		})

		Convey("Then Chance(0) is always false and Chance(1) always true", func() {
			for i := 0; i < 100; i++ {
				So(src.Chance(0), ShouldBeFalse)
				So(src.Chance(1), ShouldBeTrue)
			}
		})

		Convey("Then Chance clamps out-of-range probabilities", func() {
			So(src.Chance(-2), ShouldBeFalse)
			So(src.Chance(3.5), ShouldBeTrue)
		})

		Convey("Then Chance always consumes exactly one draw", func() {
			a := rng.New(5)
			b := rng.New(5)
			a.Chance(0)
			a.Chance(1)
			b.Next()
			b.Next()
			So(a.Next(), ShouldEqual, b.Next())
		})

		Convey("Then Normal consumes exactly two draws", func() {
			a := rng.New(5)
			b := rng.New(5)
			a.Normal()
			b.Next()
			b.Next()
			So(a.Next(), ShouldEqual, b.Next())
		})
	})
}
