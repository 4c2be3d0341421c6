package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TimeLayout is the on-disk format of purchase and expiry dates, in the bot's timezone.
const TimeLayout = "2006-01-02 15:04:05"

type Status string

const (
	StatusActive  Status = "active"
	StatusHeld    Status = "held"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// Live reports whether the slot can still be used or held.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusHeld
}

// Document is the whole persisted state.
type Document struct {
	Slots []*Record `json:"slots"`
}

type Record struct {
	ChannelID    snowflake.ID `json:"-"`
	UserID       snowflake.ID `json:"-"`
	SlotName     string       `json:"slot_name"`
	Status       Status       `json:"status"`
	PurchaseDate string       `json:"purchase_date"`
	ExpiryDate   string       `json:"expiry_date"`
	DurationDays int          `json:"duration_days"`
}

type recordJSON struct {
	UserID    json.RawMessage `json:"user_id"`
	ChannelID json.RawMessage `json:"channel_id"`
	*recordAlias
}

type recordAlias Record

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID    string `json:"user_id"`
		ChannelID string `json:"channel_id"`
		recordAlias
	}{
		UserID:      r.UserID.String(),
		ChannelID:   r.ChannelID.String(),
		recordAlias: recordAlias(r),
	})
}

// UnmarshalJSON accepts ids both as strings and as bare numbers written by older versions.
func (r *Record) UnmarshalJSON(data []byte) error {
	v := recordJSON{recordAlias: (*recordAlias)(r)}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	var err error
	if r.UserID, err = parseID(v.UserID); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	if r.ChannelID, err = parseID(v.ChannelID); err != nil {
		return fmt.Errorf("channel_id: %w", err)
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	return nil
}

func parseID(raw json.RawMessage) (snowflake.ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return 0, err
		}
	}
	return snowflake.Parse(s)
}

// Purchase parses PurchaseDate in loc.
func (r *Record) Purchase(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, r.PurchaseDate, loc)
}

// Expiry parses ExpiryDate in loc.
func (r *Record) Expiry(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, r.ExpiryDate, loc)
}

func (d *Document) FindByChannel(channelID snowflake.ID) *Record {
	for _, r := range d.Slots {
		if r.ChannelID == channelID {
			return r
		}
	}
	return nil
}

// FindLiveByChannel returns the active or held record for a channel, falling back to the most
// recent terminal one.
func (d *Document) FindLiveByChannel(channelID snowflake.ID) *Record {
	var last *Record
	for _, r := range d.Slots {
		if r.ChannelID != channelID {
			continue
		}
		if r.Status.Live() {
			return r
		}
		last = r
	}
	return last
}

func (d *Document) FindByUser(userID snowflake.ID) []*Record {
	var out []*Record
	for _, r := range d.Slots {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy so callers can hand records out without sharing them.
func (d *Document) Clone() *Document {
	c := &Document{Slots: make([]*Record, 0, len(d.Slots))}
	for _, r := range d.Slots {
		rc := *r
		c.Slots = append(c.Slots, &rc)
	}
	return c
}
