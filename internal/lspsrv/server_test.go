package lspsrv

import (
	"testing"

	"github.com/tenstorrent/ronin-sub003/internal/frontend"
)

func TestModeForFilename(t *testing.T) {
	cases := []struct {
		name string
		want frontend.Mode
	}{
		{"kernel.tanto", frontend.ModeCompute},
		{"add_compute.tanto", frontend.ModeCompute},
		{"reader_read.tanto", frontend.ModeRead},
		{"writer_write.tanto", frontend.ModeWrite},
		{"/abs/path/to/stream_read.tanto", frontend.ModeRead},
	}
	for _, c := range cases {
		if got := modeForFilename(c.name); got != c.want {
			t.Errorf("modeForFilename(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
