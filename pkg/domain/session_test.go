package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := domain.NewSession("42")
	assert.Equal(t, "42", s.UserID)
	assert.Equal(t, domain.StageMessage, s.State.Stage)
	assert.Nil(t, s.State.Dataset)
	assert.Zero(t, s.Navigation.Depth())
}

func TestSession_Clone(t *testing.T) {
	s := domain.NewSession("42")
	s.Navigation.Push(navigation.NewFrame("root"))
	s.State.Dataset = domain.Dataset{{ID: 1}}

	c := s.Clone()
	c.State.Stage = domain.StageFilter
	c.Navigation.Push(navigation.NewFrame("child"))
	c.State.Dataset = nil

	assert.Equal(t, domain.StageMessage, s.State.Stage)
	assert.Equal(t, 1, s.Navigation.Depth())
	assert.Len(t, s.State.Dataset, 1)
}

func TestRecord_Checks(t *testing.T) {
	assert.True(t, domain.Record{}.IsZero())

	r := domain.Record{
		ID: 1, FullName: "Station", GlobalID: 10, ShortName: "S", AdmArea: "Central",
		District: "Arbat", Address: "Street 1", Owner: "X",
		TestDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, r.IsZero())
	assert.False(t, r.HasEmptyRequired())

	r.Owner = ""
	assert.True(t, r.HasEmptyRequired())
}

func TestParseFieldID(t *testing.T) {
	id, ok := domain.ParseFieldID("Owner")
	assert.True(t, ok)
	assert.Equal(t, domain.FieldOwner, id)

	id, ok = domain.ParseFieldID("AdmAreaAndOwner")
	assert.True(t, ok)
	assert.True(t, id.IsSentinel())

	_, ok = domain.ParseFieldID("Price")
	assert.False(t, ok)
	assert.Len(t, domain.Fields(), 11)
}
