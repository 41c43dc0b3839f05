package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

// storeFactory returns an empty store; the test owns closing it.
type storeFactory func(t *testing.T) Store

// runStoreContract exercises behaviour every backend must share.
func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("lifecycle scenario", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		john, err := s.AddProfile(ctx, state.NewProfile("john", "doe", state.WithPhone("123"), state.WithDOB("1990-01-01")))
		require.NoError(t, err)
		assert.Equal(t, int64(1), john.ID())

		jane, err := s.AddProfile(ctx, state.NewProfile("jane", "doe", state.WithPhone("456")))
		require.NoError(t, err)
		assert.Equal(t, int64(2), jane.ID())

		require.NoError(t, s.AddFriend(ctx, john, jane))

		friends, err := s.GetFriends(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, "Jane Doe", friends[0].Label())
		assert.Equal(t, jane.ID(), friends[0].ID())

		require.NoError(t, s.RemoveProfile(ctx, state.NewProfile("john", "doe")))

		dump, err := s.Dump(ctx)
		require.NoError(t, err)
		require.Len(t, dump, 1)
		assert.Equal(t, "Jane Doe", dump[0].Profile.Label())
		assert.Empty(t, dump[0].Friends)

		friends, err = s.GetFriends(ctx, state.NewProfile("jane", "doe"))
		require.NoError(t, err)
		assert.NotNil(t, friends)
		assert.Empty(t, friends)
	})

	t.Run("duplicate add", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)

		_, err = s.AddProfile(ctx, state.NewProfile("JOHN", "doe"))
		var exists *apperrors.ErrProfileAlreadyExists
		require.ErrorAs(t, err, &exists)
		assert.Contains(t, err.Error(), "John Doe")

		dump, err := s.Dump(ctx)
		require.NoError(t, err)
		assert.Len(t, dump, 1)
	})

	t.Run("get profile resolves attributes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		added, err := s.AddProfile(ctx, state.NewProfile("john", "doe", state.WithDOB("1990-01-01")))
		require.NoError(t, err)

		p := state.NewProfile("john", "doe")
		require.NoError(t, s.GetProfile(ctx, p))
		assert.Equal(t, added.ID(), p.ID())
		assert.Nil(t, p.Phone)
		assert.Equal(t, "1990-01-01", p.DOBOrEmpty())

		err = s.GetProfile(ctx, state.NewProfile("ghost", "doe"))
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("modify phone", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("john", "doe", state.WithPhone("123")))
		require.NoError(t, err)

		require.NoError(t, s.ModifyProfile(ctx, state.NewProfile("john", "doe"), state.FieldPhone, "999"))

		p := state.NewProfile("john", "doe")
		require.NoError(t, s.GetProfile(ctx, p))
		assert.Equal(t, "999", p.PhoneOrEmpty())
	})

	t.Run("modify rename", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		john, err := s.AddProfile(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)
		_, err = s.AddProfile(ctx, state.NewProfile("jane", "doe"))
		require.NoError(t, err)

		p := state.NewProfile("john", "doe")
		require.NoError(t, s.ModifyProfile(ctx, p, state.FieldFirstname, "johnny"))
		assert.Equal(t, "Johnny Doe", p.Label())
		assert.Equal(t, john.ID(), p.ID())

		assert.True(t, apperrors.IsNotFound(s.GetProfile(ctx, state.NewProfile("john", "doe"))))
		require.NoError(t, s.GetProfile(ctx, state.NewProfile("johnny", "doe")))

		err = s.ModifyProfile(ctx, state.NewProfile("johnny", "doe"), state.FieldFirstname, "jane")
		assert.True(t, apperrors.IsAlreadyExists(err))
		assert.Contains(t, err.Error(), "Jane Doe")
		require.NoError(t, s.GetProfile(ctx, state.NewProfile("johnny", "doe")))
	})

	t.Run("modify rejects bad input", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)

		var unsupported *apperrors.ErrUnsupportedField
		err = s.ModifyProfile(ctx, state.NewProfile("john", "doe"), state.FieldEmail, "john@example.com")
		require.ErrorAs(t, err, &unsupported)

		var invalid *apperrors.ErrInvalidValue
		err = s.ModifyProfile(ctx, state.NewProfile("john", "doe"), state.FieldPhone, "")
		require.ErrorAs(t, err, &invalid)

		err = s.ModifyProfile(ctx, state.NewProfile("ghost", "doe"), state.FieldPhone, "1")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("modify stale descriptor", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("john", "doe", state.WithPhone("123")))
		require.NoError(t, err)

		stale := state.NewProfile("john", "doe")
		require.NoError(t, s.GetProfile(ctx, stale))
		require.NoError(t, s.RemoveProfile(ctx, state.NewProfile("john", "doe")))

		err = s.ModifyProfile(ctx, stale, state.FieldPhone, "999")
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "123", stale.PhoneOrEmpty())

		dump, err := s.Dump(ctx)
		require.NoError(t, err)
		assert.Empty(t, dump)
	})

	t.Run("friendship is undirected and deduplicated", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, name := range []string{"alice", "bob"} {
			_, err := s.AddProfile(ctx, state.NewProfile(name, "smith"))
			require.NoError(t, err)
		}

		require.NoError(t, s.AddFriend(ctx, state.NewProfile("alice", "smith"), state.NewProfile("bob", "smith")))
		require.NoError(t, s.AddFriend(ctx, state.NewProfile("alice", "smith"), state.NewProfile("bob", "smith")))
		require.NoError(t, s.AddFriend(ctx, state.NewProfile("bob", "smith"), state.NewProfile("alice", "smith")))

		friends, err := s.GetFriends(ctx, state.NewProfile("bob", "smith"))
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, "Alice Smith", friends[0].Label())

		friends, err = s.GetFriends(ctx, state.NewProfile("alice", "smith"))
		require.NoError(t, err)
		require.Len(t, friends, 1)

		require.NoError(t, s.RemoveFriend(ctx, state.NewProfile("bob", "smith"), state.NewProfile("alice", "smith")))
		friends, err = s.GetFriends(ctx, state.NewProfile("alice", "smith"))
		require.NoError(t, err)
		assert.Empty(t, friends)

		// removing an absent edge is a no-op
		require.NoError(t, s.RemoveFriend(ctx, state.NewProfile("bob", "smith"), state.NewProfile("alice", "smith")))
	})

	t.Run("friendship errors", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("alice", "smith"))
		require.NoError(t, err)

		var self *apperrors.ErrSelfFriendship
		err = s.AddFriend(ctx, state.NewProfile("alice", "smith"), state.NewProfile("ALICE", "smith"))
		require.ErrorAs(t, err, &self)

		err = s.AddFriend(ctx, state.NewProfile("alice", "smith"), state.NewProfile("ghost", "smith"))
		assert.True(t, apperrors.IsNotFound(err))

		err = s.RemoveFriend(ctx, state.NewProfile("ghost", "smith"), state.NewProfile("alice", "smith"))
		assert.True(t, apperrors.IsNotFound(err))

		_, err = s.GetFriends(ctx, state.NewProfile("ghost", "smith"))
		assert.True(t, apperrors.IsNotFound(err))

		assert.True(t, apperrors.IsNotFound(s.RemoveProfile(ctx, state.NewProfile("ghost", "smith"))))
	})

	t.Run("ordering", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, name := range [][2]string{{"zoe", "adams"}, {"carl", "young"}, {"carl", "brown"}, {"amy", "zed"}} {
			_, err := s.AddProfile(ctx, state.NewProfile(name[0], name[1]))
			require.NoError(t, err)
		}
		for _, name := range [][2]string{{"carl", "young"}, {"carl", "brown"}, {"amy", "zed"}} {
			require.NoError(t, s.AddFriend(ctx, state.NewProfile("zoe", "adams"), state.NewProfile(name[0], name[1])))
		}

		friends, err := s.GetFriends(ctx, state.NewProfile("zoe", "adams"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Amy Zed", "Carl Brown", "Carl Young"}, labels(friends))

		dump, err := s.Dump(ctx)
		require.NoError(t, err)
		owners := make([]*state.Profile, 0, len(dump))
		for _, entry := range dump {
			owners = append(owners, entry.Profile)
		}
		assert.Equal(t, []string{"Amy Zed", "Carl Brown", "Carl Young", "Zoe Adams"}, labels(owners))
		assert.Equal(t, []string{"Amy Zed", "Carl Brown", "Carl Young"}, labels(dump[3].Friends))
		assert.Equal(t, []string{"Zoe Adams"}, labels(dump[0].Friends))
	})

	t.Run("dump carries full attributes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.AddProfile(ctx, state.NewProfile("john", "doe", state.WithPhone("123"), state.WithDOB("1990-01-01")))
		require.NoError(t, err)
		_, err = s.AddProfile(ctx, state.NewProfile("jane", "doe", state.WithPhone("456")))
		require.NoError(t, err)
		require.NoError(t, s.AddFriend(ctx, state.NewProfile("jane", "doe"), state.NewProfile("john", "doe")))

		dump, err := s.Dump(ctx)
		require.NoError(t, err)
		require.Len(t, dump, 2)

		jane := dump[0]
		assert.Equal(t, "456", jane.Profile.PhoneOrEmpty())
		assert.Nil(t, jane.Profile.DOB)
		require.Len(t, jane.Friends, 1)
		assert.Equal(t, "123", jane.Friends[0].PhoneOrEmpty())
		assert.Equal(t, "1990-01-01", jane.Friends[0].DOBOrEmpty())
	})

	t.Run("ids are never reused", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first, err := s.AddProfile(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)
		require.NoError(t, s.RemoveProfile(ctx, state.NewProfile("john", "doe")))

		again, err := s.AddProfile(ctx, state.NewProfile("john", "doe"))
		require.NoError(t, err)
		assert.Greater(t, again.ID(), first.ID())
	})

	t.Run("add with resolved descriptor", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p := state.NewProfile("john", "doe", state.WithPhone("123"))
		first, err := s.AddProfile(ctx, p)
		require.NoError(t, err)
		require.NoError(t, s.RemoveProfile(ctx, p))

		var again *state.Profile
		require.NotPanics(t, func() { again, err = s.AddProfile(ctx, p) })
		require.NoError(t, err)
		assert.Greater(t, again.ID(), first.ID())
		assert.Equal(t, "123", again.PhoneOrEmpty())
		assert.Equal(t, first.ID(), p.ID())

		stored := state.NewProfile("john", "doe")
		require.NoError(t, s.GetProfile(ctx, stored))
		assert.Equal(t, again.ID(), stored.ID())

		_, err = s.AddProfile(ctx, again)
		assert.True(t, apperrors.IsAlreadyExists(err))
	})
}

func labels(profiles []*state.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Label())
	}
	return out
}
