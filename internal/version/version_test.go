package version

import (
	"runtime"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldV, oldC, oldB })

	Version, Commit, BuildTime = "1.2.0", "abc1234", "2024-05-01T00:00:00Z"

	want := "1.2.0 (abc1234) built 2024-05-01T00:00:00Z"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	info := Get()
	if info.Version != "1.2.0" || info.Commit != "abc1234" || info.GoVersion != runtime.Version() {
		t.Errorf("Get() = %+v", info)
	}
}
