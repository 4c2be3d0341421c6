package admin

import (
	"testing"

	"github.com/disgoorg/slotbot/internal/gateways/store"
)

func TestStatusFilter(t *testing.T) {
	tests := []struct {
		option string
		want   []store.Status
	}{
		{option: "", want: []store.Status{store.StatusActive, store.StatusHeld}},
		{option: "all", want: nil},
		{option: "expired", want: []store.Status{store.StatusExpired}},
	}
	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			got := statusFilter(tt.option)
			if len(got) != len(tt.want) {
				t.Fatalf("statusFilter(%q) = %v, want %v", tt.option, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("statusFilter(%q)[%d] = %v, want %v", tt.option, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatRecord(t *testing.T) {
	r := &store.Record{
		ChannelID:    10,
		UserID:       20,
		Status:       store.StatusHeld,
		PurchaseDate: "2024-05-01 12:00:00",
		ExpiryDate:   "2024-05-08 12:00:00",
	}
	want := "🟡 <#10> · <@20> · `2024-05-01 12:00:00` → `2024-05-08 12:00:00`"
	if got := FormatRecord(r); got != want {
		t.Errorf("FormatRecord() = %q, want %q", got, want)
	}
}
