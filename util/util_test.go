package util_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/nasa-jpl/nanodrive/util"
)

func ExampleLimiter_Check() {
	l := util.Limiter{Min: 0, Max: 100}
	fmt.Println(l.Check(50), l.Check(101))
	// Output: true false
}

func ExampleSecsToDuration() {
	fmt.Println(util.SecsToDuration(0.03))
	// Output: 30ms
}

func TestLimiterCheckInclusive(t *testing.T) {
	l := util.Limiter{Min: 0, Max: 100}
	if !l.Check(0) || !l.Check(100) {
		t.Error("expected limits to be inclusive")
	}
}

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}
