// Package apastats orchestrates stat extraction: cache lookup first,
// then session check, live scrape and write-back, with one run history
// row per request.
package apastats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"apastats/lib/runstore"
	"apastats/lib/scrapers/apaleague"
	"apastats/lib/statcache"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/apastats")

type Service struct {
	client *apaleague.Client
	cache  statcache.Store
	runs   runstore.Store
	league string
}

// NewService wires the orchestrator. league is the configured default,
// requests and member urls can override it.
func NewService(client *apaleague.Client, cache statcache.Store, runs runstore.Store, league string) Service {
	return Service{
		client: client,
		cache:  cache,
		runs:   runs,
		league: league,
	}
}

type PlayerRequest struct {
	// Identifier is a bare user id or any member url.
	Identifier string
	League     string
	Expand     bool
	NoCache    bool
}

type PlayerResult struct {
	CacheHit bool
	Profile  apaleague.PlayerProfile
	// Raw is the payload exactly as it lives in the cache, a repeat
	// request within the TTL returns these same bytes.
	Raw json.RawMessage
}

type TeamRequest struct {
	// Identifier is a bare team id or a team url.
	Identifier string
	League     string
	Expand     bool
	NoCache    bool
}

type TeamResult struct {
	CacheHit bool
	Roster   apaleague.TeamRoster
	Raw      json.RawMessage
}

// PlayerStats returns a player's team history, from the cache when a
// fresh entry exists, otherwise scraped live through the session.
func (s Service) PlayerStats(ctx context.Context, req PlayerRequest) (PlayerResult, error) {
	ctx, span := tracer.Start(ctx, "PlayerStats")
	defer span.End()

	target, err := apaleague.ParseMemberTarget(req.Identifier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PlayerResult{}, err
	}

	requested := req.League
	if requested == "" {
		requested = target.League
	}
	league := apaleague.ResolveLeague(requested, s.league)
	span.SetAttributes(
		attribute.String("user_id", target.UserID),
		attribute.String("league", league),
		attribute.Bool("expand", req.Expand),
	)

	key := statcache.Key{
		Kind:       statcache.KindPlayer,
		Identifier: target.UserID,
		League:     league,
		Expanded:   req.Expand,
	}
	run := runstore.Run{
		StartedAt: time.Now(),
		Operation: "player",
		Target:    target.UserID,
		League:    league,
		Expanded:  req.Expand,
	}

	if !req.NoCache {
		entry, err := s.cache.Get(ctx, key)
		if err == nil {
			var profile apaleague.PlayerProfile
			err = json.Unmarshal(entry.Payload, &profile)
			if err == nil {
				span.SetStatus(codes.Ok, "cache hit")
				run.CacheHit = true
				s.record(ctx, run, nil)
				return PlayerResult{CacheHit: true, Profile: profile, Raw: entry.Payload}, nil
			}
			slog.Warn("cached player entry would not decode", "key", key.String(), "err", err)
		} else if !errors.Is(err, statcache.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return PlayerResult{}, err
		}
	}

	err = s.client.RequireSession(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, run, err)
		return PlayerResult{}, err
	}

	profile, err := s.client.ExtractPlayer(ctx, target, league, req.Expand)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, run, err)
		return PlayerResult{}, err
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PlayerResult{}, err
	}
	err = s.cache.Put(ctx, key, json.RawMessage(raw))
	if err != nil {
		slog.Warn("cache write failed", "key", key.String(), "err", err)
	}

	s.record(ctx, run, nil)
	return PlayerResult{Profile: profile, Raw: raw}, nil
}

// TeamStats returns a team's roster, cache-first like PlayerStats.
// Partial expansion failures ride along in the roster, they are not
// errors.
func (s Service) TeamStats(ctx context.Context, req TeamRequest) (TeamResult, error) {
	ctx, span := tracer.Start(ctx, "TeamStats")
	defer span.End()

	teamID, err := apaleague.ParseTeamTarget(req.Identifier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TeamResult{}, err
	}

	league := apaleague.ResolveLeague(req.League, s.league)
	span.SetAttributes(
		attribute.String("team_id", teamID),
		attribute.Bool("expand", req.Expand),
	)

	// team urls carry no league, so the key does not either
	key := statcache.Key{
		Kind:       statcache.KindTeam,
		Identifier: teamID,
		Expanded:   req.Expand,
	}
	run := runstore.Run{
		StartedAt: time.Now(),
		Operation: "team",
		Target:    teamID,
		League:    league,
		Expanded:  req.Expand,
	}

	if !req.NoCache {
		entry, err := s.cache.Get(ctx, key)
		if err == nil {
			var roster apaleague.TeamRoster
			err = json.Unmarshal(entry.Payload, &roster)
			if err == nil {
				span.SetStatus(codes.Ok, "cache hit")
				run.CacheHit = true
				run.PartialFailures = len(roster.Partial)
				s.record(ctx, run, nil)
				return TeamResult{CacheHit: true, Roster: roster, Raw: entry.Payload}, nil
			}
			slog.Warn("cached team entry would not decode", "key", key.String(), "err", err)
		} else if !errors.Is(err, statcache.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return TeamResult{}, err
		}
	}

	err = s.client.RequireSession(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, run, err)
		return TeamResult{}, err
	}

	roster, err := s.client.ExtractTeam(ctx, teamID, league, req.Expand)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, run, err)
		return TeamResult{}, err
	}
	run.PartialFailures = len(roster.Partial)

	raw, err := json.Marshal(roster)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TeamResult{}, err
	}
	err = s.cache.Put(ctx, key, json.RawMessage(raw))
	if err != nil {
		slog.Warn("cache write failed", "key", key.String(), "err", err)
	}

	s.record(ctx, run, nil)
	return TeamResult{Roster: roster, Raw: raw}, nil
}

// record writes the run history row. History problems are logged, they
// never fail the request they describe.
func (s Service) record(ctx context.Context, run runstore.Run, opErr error) {
	run.Duration = time.Since(run.StartedAt)
	if opErr != nil {
		run.Error = opErr.Error()
	}
	err := s.runs.Record(ctx, run)
	if err != nil {
		slog.Warn("recording run history failed", "err", err)
	}
}

func (s Service) Login(ctx context.Context, creds apaleague.Credentials) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	err := s.client.Login(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Service) Verify(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "Verify")
	defer span.End()

	ok, err := s.client.Verify(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("authenticated", ok))
	return ok, nil
}

// ClearState wipes the saved session and everything under the state
// directory, including the file cache living inside it.
func (s Service) ClearState(ctx context.Context) error {
	_, span := tracer.Start(ctx, "ClearState")
	defer span.End()

	err := s.client.Options().StateDir.Clear()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Service) CacheStats(ctx context.Context) (statcache.Stats, error) {
	ctx, span := tracer.Start(ctx, "CacheStats")
	defer span.End()
	return s.cache.Stats(ctx)
}

func (s Service) ClearCache(ctx context.Context, filter statcache.Filter) (int, error) {
	ctx, span := tracer.Start(ctx, "ClearCache")
	defer span.End()
	return s.cache.Clear(ctx, filter)
}

func (s Service) ClearAllCache(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "ClearAllCache")
	defer span.End()
	return s.cache.ClearAll(ctx)
}

func (s Service) CleanupCache(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "CleanupCache")
	defer span.End()
	return s.cache.Cleanup(ctx)
}

func (s Service) History(ctx context.Context, limit int) ([]runstore.Run, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()
	return s.runs.Recent(ctx, limit)
}
