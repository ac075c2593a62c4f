package state

import "testing"

func TestQueuedFor(t *testing.T) {
	tests := []struct {
		group string
		want  string
	}{
		{"12v12 Casual Match", "Queued for Casual"},
		{"MvM Practice", "Queued for MvM (Boot Camp)"},
		{"MvM MannUp", "Queued for MvM (Mann Up)"},
		{"6v6 Ladder Match", "Queued for Competitive"},
		{"  6v6 Ladder Match ", "Queued for Competitive"},
		{"Something New", "Queued for Something New"},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			if got := QueuedFor(tt.group); got != tt.want {
				t.Errorf("QueuedFor(%q) = %q, want %q", tt.group, got, tt.want)
			}
		})
	}
}

func TestIsQueued(t *testing.T) {
	tests := []struct {
		queued string
		want   bool
	}{
		{NotQueued, false},
		{Queued, true},
		{QueuedForParty, true},
		{QueuedFor("MvM MannUp"), true},
	}

	for _, tt := range tests {
		if got := IsQueued(tt.queued); got != tt.want {
			t.Errorf("IsQueued(%q) = %v, want %v", tt.queued, got, tt.want)
		}
	}
}

func TestIsClass(t *testing.T) {
	for _, c := range Classes {
		if !IsClass(c) {
			t.Errorf("IsClass(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"", "scout", "Civilian", "Spy "} {
		if IsClass(c) {
			t.Errorf("IsClass(%q) = true, want false", c)
		}
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if !d.InMenus {
		t.Error("Default().InMenus = false, want true")
	}
	if d.Queued != NotQueued {
		t.Errorf("Default().Queued = %q, want %q", d.Queued, NotQueued)
	}
	if !d.IsDefault() {
		t.Error("Default().IsDefault() = false")
	}

	d.Map = "cp_badlands"
	if d.IsDefault() {
		t.Error("IsDefault() = true after setting Map")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "menus",
			state: Default(),
			want:  "in menus, Not queued",
		},
		{
			name:  "map only",
			state: State{Map: "pl_upward", Queued: NotQueued},
			want:  "pl_upward, Not queued",
		},
		{
			name: "full",
			state: State{
				Map:              "koth_harvest_final",
				Class:            "Medic",
				Queued:           "Queued for Casual",
				Hosting:          true,
				ServerName:       "Local",
				ServerPlayers:    3,
				ServerPlayersMax: 24,
			},
			want: "koth_harvest_final on Local (3/24), hosting as Medic, Queued for Casual",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
