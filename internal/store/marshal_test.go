package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadList_AbsentSlotIsEmpty(t *testing.T) {
	s := createTestStore(t)

	items, err := LoadList[testItem](context.Background(), s, SlotServices)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSaveList_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := []testItem{
		{ID: "1", Price: 120, Tags: []string{"urgent", "24/7"}},
		{ID: "2", Price: 0.5},
	}
	require.NoError(t, SaveList(ctx, s, SlotServices, in))

	out, err := LoadList[testItem](ctx, s, SlotServices)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveList_NilWritesEmptyArray(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, SaveList[testItem](ctx, s, SlotCart, nil))

	snap, err := s.Load(ctx, SlotCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(snap.Doc))
}

func TestSaveList_DoesNotEscapeHTML(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, SaveList(ctx, s, SlotCart, []testItem{{ID: "a&b<c>"}}))

	snap, err := s.Load(ctx, SlotCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a&b<c>","price":0}]`, string(snap.Doc))
}

func TestLoadList_CorruptDataIsEmpty(t *testing.T) {
	docs := map[string]string{
		"truncated":  `[{"id":"1"`,
		"not json":   `bookings!`,
		"wrong type": `{"id":"1"}`,
		"null":       `null`,
		"blank":      `   `,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			s := createTestStore(t)
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, SlotBookings, []byte(doc)))

			items, err := LoadList[testItem](ctx, s, SlotBookings)
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestDoc_RoundTripAndRemove(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	got, err := LoadDoc[testItem](ctx, s, SlotUser)
	require.NoError(t, err)
	assert.Nil(t, got)

	in := &testItem{ID: "u1", Price: 3}
	require.NoError(t, SaveDoc(ctx, s, SlotUser, in))

	got, err = LoadDoc[testItem](ctx, s, SlotUser)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *in, *got)

	require.NoError(t, SaveDoc[testItem](ctx, s, SlotUser, nil))
	got, err = LoadDoc[testItem](ctx, s, SlotUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadDoc_CorruptIsAbsent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, SlotUser, []byte(`["not","a","user"]`)))

	got, err := LoadDoc[testItem](ctx, s, SlotUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}
