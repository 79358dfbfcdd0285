package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stations(ids ...string) []Station {
	out := make([]Station, 0, len(ids))
	for _, id := range ids {
		out = append(out, Station{StationUUID: id})
	}
	return out
}

func ids(list []Station) []string {
	out := make([]string, 0, len(list))
	for _, st := range list {
		out = append(out, st.StationUUID)
	}
	return out
}

func TestPushRecent(t *testing.T) {
	tests := []struct {
		name    string
		history []Station
		play    string
		want    []string
	}{
		{name: "empty history", history: nil, play: "a", want: []string{"a"}},
		{name: "newest first", history: stations("a", "b"), play: "c", want: []string{"c", "a", "b"}},
		{name: "replay moves station to front", history: stations("a", "b", "c"), play: "b", want: []string{"b", "a", "c"}},
		{name: "replay of newest keeps one entry", history: stations("a", "b"), play: "a", want: []string{"a", "b"}},
		{
			name:    "trimmed to limit",
			history: stations("a", "b", "c", "d", "e", "f"),
			play:    "g",
			want:    []string{"g", "a", "b", "c", "d", "e"},
		},
		{
			name:    "replay at the tail of a full history",
			history: stations("a", "b", "c", "d", "e", "f"),
			play:    "f",
			want:    []string{"f", "a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PushRecent(tt.history, Station{StationUUID: tt.play}, HistoryLimit)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPushRecent_DoesNotModifyInput(t *testing.T) {
	history := stations("a", "b", "c")
	_ = PushRecent(history, Station{StationUUID: "b"}, HistoryLimit)
	assert.Equal(t, []string{"a", "b", "c"}, ids(history))
}

func TestUserClone_DeepCopiesCollections(t *testing.T) {
	show := false
	u := &User{UID: "R", CreditedReferees: []string{"U2"}, Profile: Profile{CuisineType: "Bar", ShowLivePill: &show}}

	c := u.Clone()
	c.CreditedReferees = append(c.CreditedReferees[:0], "U9")
	*c.Profile.ShowLivePill = true

	assert.Equal(t, []string{"U2"}, u.CreditedReferees)
	assert.False(t, *u.Profile.ShowLivePill)
	assert.True(t, u.HasCredited("U2"))
	assert.False(t, u.HasCredited("U3"))
}

func TestProfile_LivePillVisible(t *testing.T) {
	off := false
	assert.True(t, Profile{}.LivePillVisible())
	assert.False(t, Profile{ShowLivePill: &off}.LivePillVisible())
}
