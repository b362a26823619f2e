package netcore

import "testing"

func TestFlagsHas(t *testing.T) {
	tests := []struct {
		name string
		f    Flags
		want Flags
		has  bool
	}{
		{"empty set has none", 0, ReuseAddr, false},
		{"single bit matches", ReuseAddr, ReuseAddr, true},
		{"combined set has subset", ReuseAddr | NoDelay, NoDelay, true},
		{"combined set lacks other bit", ReuseAddr | NoDelay, Linger, false},
		{"combined set has combined want", ReuseAddr | NoDelay, ReuseAddr | NoDelay, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Has(tt.want); got != tt.has {
				t.Errorf("Has(%v) = %v, want %v", tt.want, got, tt.has)
			}
		})
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		f    Flags
		want string
	}{
		{0, "none"},
		{ReuseAddr, "ReuseAddr"},
		{ReuseAddr | NoDelay, "ReuseAddr|NoDelay"},
		{InstallSignalHandler, "InstallSignalHandler"},
	}

	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Flags(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
