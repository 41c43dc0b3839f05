package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

// Fixture is the seed file format.
type Fixture struct {
	Profiles    []FixtureProfile    `json:"profiles"`
	Friendships []FixtureFriendship `json:"friendships"`
}

// FixtureProfile is one profile to create
type FixtureProfile struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Phone     *string `json:"phone,omitempty"`
	DOB       *string `json:"dob,omitempty"`
}

// FixtureName addresses a profile by label
type FixtureName struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// FixtureFriendship is one undirected edge
type FixtureFriendship struct {
	A FixtureName `json:"a"`
	B FixtureName `json:"b"`
}

// Result counts what a seed run changed
type Result struct {
	ProfilesCreated int
	ProfilesSkipped int
	Friendships     int
}

func strPtr(s string) *string { return &s }

// defaultFixture is seeded when no -file is given.
func defaultFixture() *Fixture {
	return &Fixture{
		Profiles: []FixtureProfile{
			{Firstname: "john", Lastname: "doe", Phone: strPtr("555-0100"), DOB: strPtr("1990-01-01")},
			{Firstname: "jane", Lastname: "doe", Phone: strPtr("555-0101"), DOB: strPtr("1991-02-02")},
			{Firstname: "alan", Lastname: "turing", DOB: strPtr("1912-06-23")},
			{Firstname: "ada", Lastname: "lovelace", DOB: strPtr("1815-12-10")},
		},
		Friendships: []FixtureFriendship{
			{A: FixtureName{"john", "doe"}, B: FixtureName{"jane", "doe"}},
			{A: FixtureName{"alan", "turing"}, B: FixtureName{"ada", "lovelace"}},
			{A: FixtureName{"jane", "doe"}, B: FixtureName{"ada", "lovelace"}},
		},
	}
}

// loadFixture decodes a fixture, rejecting unknown fields.
func loadFixture(r io.Reader) (*Fixture, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	return &f, nil
}

// seed creates every fixture profile, then every friendship. Profiles that
// already exist are skipped so a seed can be re-run.
func seed(ctx context.Context, store graph.Store, f *Fixture, log *zap.Logger) (Result, error) {
	var res Result

	for _, fp := range f.Profiles {
		var opts []state.ProfileOption
		if fp.Phone != nil {
			opts = append(opts, state.WithPhone(*fp.Phone))
		}
		if fp.DOB != nil {
			opts = append(opts, state.WithDOB(*fp.DOB))
		}

		p, err := store.AddProfile(ctx, state.NewProfile(fp.Firstname, fp.Lastname, opts...))
		if apperrors.IsAlreadyExists(err) {
			log.Info("Profile already present, skipping", zap.String("profile", fp.Firstname+" "+fp.Lastname))
			res.ProfilesSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seeding profile %s %s: %w", fp.Firstname, fp.Lastname, err)
		}
		log.Debug("Seeded profile", zap.Int64("id", p.ID()), zap.String("profile", p.Label()))
		res.ProfilesCreated++
	}

	for _, ff := range f.Friendships {
		a := state.NewProfile(ff.A.Firstname, ff.A.Lastname)
		b := state.NewProfile(ff.B.Firstname, ff.B.Lastname)
		if err := store.AddFriend(ctx, a, b); err != nil {
			return res, fmt.Errorf("seeding friendship %s - %s: %w", a.Label(), b.Label(), err)
		}
		res.Friendships++
	}

	return res, nil
}
