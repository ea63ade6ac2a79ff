package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/pkg/logger"
)

// memStore is an in-memory stand-in for the database, shared by the fake
// repositories. It mirrors the persistence semantics the services rely on:
// one vote row per (participant, candidate), tallies recomputed from the
// ledger on every write, soft-deleted meetings invisible.
type memStore struct {
	mu sync.Mutex

	meetings        map[uuid.UUID]*domain.Meeting
	participants    map[uuid.UUID]*domain.Participant
	timeCandidates  map[uuid.UUID]*domain.TimeCandidate
	placeCandidates map[string]*domain.PlaceCandidate
	timeVotes       map[uuid.UUID]*domain.TimeVote
	placeVotes      map[uuid.UUID]*domain.PlaceVote
	users           map[uuid.UUID]*domain.User
	places          map[string]*domain.Place

	candidateOrder []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		meetings:        make(map[uuid.UUID]*domain.Meeting),
		participants:    make(map[uuid.UUID]*domain.Participant),
		timeCandidates:  make(map[uuid.UUID]*domain.TimeCandidate),
		placeCandidates: make(map[string]*domain.PlaceCandidate),
		timeVotes:       make(map[uuid.UUID]*domain.TimeVote),
		placeVotes:      make(map[uuid.UUID]*domain.PlaceVote),
		users:           make(map[uuid.UUID]*domain.User),
		places:          make(map[string]*domain.Place),
	}
}

func testLogger() *logger.Logger {
	log, _ := logger.New("error", "test")
	return log
}

// replayTimeTallyLocked rebuilds a candidate's label counts from the ledger.
// Caller holds the lock.
func (s *memStore) replayTimeTallyLocked(candidateID uuid.UUID) {
	candidate := s.timeCandidates[candidateID]
	if candidate == nil {
		return
	}
	for label := range candidate.Labels {
		candidate.Labels[label] = 0
	}
	for _, v := range s.timeVotes {
		if v.TimeCandidateID != candidateID || !v.IsAvailable {
			continue
		}
		candidate.Labels[v.TimeLabel]++
	}
}

func (s *memStore) replayPlaceTallyLocked(candidateID string) {
	candidate := s.placeCandidates[candidateID]
	if candidate == nil {
		return
	}
	candidate.AvailableCount = 0
	candidate.UnavailableCount = 0
	for _, v := range s.placeVotes {
		if v.PlaceCandidateID != candidateID {
			continue
		}
		if v.IsAvailable {
			candidate.AvailableCount++
		} else {
			candidate.UnavailableCount++
		}
	}
}

func entriesFromLabels(labels map[string]int) []domain.TallyEntry {
	entries := make([]domain.TallyEntry, 0, len(labels))
	for label, count := range labels {
		entries = append(entries, domain.TallyEntry{Label: label, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}

type fakeMeetingRepo struct{ store *memStore }

func (r *fakeMeetingRepo) Create(_ context.Context, meeting *domain.Meeting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := *meeting
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.store.meetings[m.ID] = &m
	return nil
}

func (r *fakeMeetingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Meeting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.store.meetings[id]
	if m == nil || m.DeletedAt != nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMeetingRepo) GetByShareCode(_ context.Context, code string) (*domain.Meeting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.meetings {
		if m.ShareCode == code && m.DeletedAt == nil {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, meeting *domain.Meeting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing := r.store.meetings[meeting.ID]
	if existing == nil || existing.DeletedAt != nil {
		return domain.ErrMeetingNotFound
	}
	cp := *meeting
	cp.UpdatedAt = time.Now()
	r.store.meetings[meeting.ID] = &cp
	return nil
}

func (r *fakeMeetingRepo) SoftDelete(_ context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.store.meetings[id]
	if m == nil || m.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	m.DeletedAt = &now
	return true, nil
}

func (r *fakeMeetingRepo) Confirm(_ context.Context, id uuid.UUID, chosenTime, chosenLocation string) (*domain.Meeting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.store.meetings[id]
	if m == nil || m.DeletedAt != nil {
		return nil, domain.ErrMeetingNotFound
	}
	if m.ConfirmedAt != nil {
		return nil, domain.ErrAlreadyConfirmed
	}
	now := time.Now()
	m.ConfirmedTime = chosenTime
	m.ConfirmedLocation = chosenLocation
	m.ConfirmedAt = &now
	m.UpdatedAt = now
	cp := *m
	return &cp, nil
}

func (r *fakeMeetingRepo) SummariesByUser(_ context.Context, userID uuid.UUID) ([]domain.MeetingSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var summaries []domain.MeetingSummary
	for _, m := range r.store.meetings {
		if m.DeletedAt != nil || m.ConfirmedAt != nil {
			continue
		}
		if m.CreatorID != userID {
			continue
		}
		summaries = append(summaries, domain.MeetingSummary{
			ID:        m.ID,
			Title:     m.Name,
			Status:    m.Status(),
			CreatorID: m.CreatorID,
			IsHost:    true,
		})
	}
	return summaries, nil
}

type fakeParticipantRepo struct{ store *memStore }

func (r *fakeParticipantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.participants[id]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]domain.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Participant
	for _, p := range r.store.participants {
		if p.MeetingID == meetingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) JoinByUser(_ context.Context, meetingID, userID uuid.UUID, nickname string) (*domain.Participant, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.MeetingID == meetingID && p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, false, nil
		}
	}
	now := time.Now()
	p := &domain.Participant{
		ID:        uuid.New(),
		MeetingID: meetingID,
		UserID:    &userID,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.participants[p.ID] = p
	cp := *p
	return &cp, true, nil
}

func (r *fakeParticipantRepo) JoinByOAuthKey(_ context.Context, meetingID uuid.UUID, oauthKey, nickname string) (*domain.Participant, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.MeetingID == meetingID && p.OAuthKey == oauthKey {
			cp := *p
			return &cp, false, nil
		}
	}
	now := time.Now()
	p := &domain.Participant{
		ID:        uuid.New(),
		MeetingID: meetingID,
		OAuthKey:  oauthKey,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.participants[p.ID] = p
	cp := *p
	return &cp, true, nil
}

func (r *fakeParticipantRepo) Update(_ context.Context, id uuid.UUID, req *domain.UpdateParticipantRequest) (*domain.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.participants[id]
	if p == nil {
		return nil, domain.ErrParticipantNotFound
	}
	if req.Nickname != nil {
		p.Nickname = *req.Nickname
	}
	if req.HasResponded != nil {
		p.HasResponded = *req.HasResponded
	}
	if req.IsInvited != nil {
		p.IsInvited = *req.IsInvited
	}
	if req.PreferencePlace != nil {
		p.PreferencePlace = req.PreferencePlace
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.participants[id] == nil {
		return false, nil
	}
	delete(r.store.participants, id)

	affectedTime := make(map[uuid.UUID]struct{})
	for vid, v := range r.store.timeVotes {
		if v.ParticipantID == id {
			affectedTime[v.TimeCandidateID] = struct{}{}
			delete(r.store.timeVotes, vid)
		}
	}
	affectedPlace := make(map[string]struct{})
	for vid, v := range r.store.placeVotes {
		if v.ParticipantID == id {
			affectedPlace[v.PlaceCandidateID] = struct{}{}
			delete(r.store.placeVotes, vid)
		}
	}
	for cid := range affectedTime {
		r.store.replayTimeTallyLocked(cid)
	}
	for cid := range affectedPlace {
		r.store.replayPlaceTallyLocked(cid)
	}
	return true, nil
}

type fakeCandidateRepo struct{ store *memStore }

func (r *fakeCandidateRepo) CreateTimeCandidate(_ context.Context, candidate *domain.TimeCandidate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	cp := *candidate
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.store.timeCandidates[cp.ID] = &cp
	r.store.candidateOrder = append(r.store.candidateOrder, cp.ID)
	return nil
}

func (r *fakeCandidateRepo) GetTimeCandidate(_ context.Context, id uuid.UUID) (*domain.TimeCandidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := r.store.timeCandidates[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	cp.Labels = make(map[string]int, len(c.Labels))
	for k, v := range c.Labels {
		cp.Labels[k] = v
	}
	return &cp, nil
}

func (r *fakeCandidateRepo) ListTimeCandidates(_ context.Context, meetingID uuid.UUID) ([]domain.TimeCandidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.TimeCandidate
	for _, id := range r.store.candidateOrder {
		c := r.store.timeCandidates[id]
		if c != nil && c.MeetingID == meetingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCandidateRepo) DeleteTimeCandidate(_ context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.timeCandidates[id] == nil {
		return false, nil
	}
	delete(r.store.timeCandidates, id)
	for vid, v := range r.store.timeVotes {
		if v.TimeCandidateID == id {
			delete(r.store.timeVotes, vid)
		}
	}
	return true, nil
}

func (r *fakeCandidateRepo) CreatePlaceCandidate(_ context.Context, candidate *domain.PlaceCandidate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.placeCandidates[candidate.ID] != nil {
		return domain.ErrDuplicatePlaceCandidate
	}
	now := time.Now()
	cp := *candidate
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.store.placeCandidates[cp.ID] = &cp
	return nil
}

func (r *fakeCandidateRepo) GetPlaceCandidate(_ context.Context, id string) (*domain.PlaceCandidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := r.store.placeCandidates[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCandidateRepo) ListPlaceCandidates(_ context.Context, meetingID uuid.UUID) ([]domain.PlaceCandidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.PlaceCandidate
	for _, c := range r.store.placeCandidates {
		if c.MeetingID == meetingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCandidateRepo) DeletePlaceCandidate(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.placeCandidates[id] == nil {
		return false, nil
	}
	delete(r.store.placeCandidates, id)
	for vid, v := range r.store.placeVotes {
		if v.PlaceCandidateID == id {
			delete(r.store.placeVotes, vid)
		}
	}
	return true, nil
}

type fakeVoteRepo struct{ store *memStore }

func (r *fakeVoteRepo) CastTimeVote(_ context.Context, vote *domain.TimeVote) (*domain.TimeVoteResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	candidate := r.store.timeCandidates[vote.TimeCandidateID]
	if candidate == nil {
		return nil, domain.ErrCandidateNotFound
	}
	participant := r.store.participants[vote.ParticipantID]
	if participant == nil || participant.MeetingID != candidate.MeetingID {
		return nil, domain.ErrParticipantNotFound
	}

	outcome := domain.VoteInserted
	now := time.Now()
	var row *domain.TimeVote
	for _, v := range r.store.timeVotes {
		if v.ParticipantID == vote.ParticipantID && v.TimeCandidateID == vote.TimeCandidateID {
			v.TimeLabel = vote.TimeLabel
			v.IsAvailable = vote.IsAvailable
			v.Memo = vote.Memo
			v.UpdatedAt = now
			row = v
			outcome = domain.VoteUpdated
			break
		}
	}
	if row == nil {
		row = &domain.TimeVote{
			ID:              uuid.New(),
			ParticipantID:   vote.ParticipantID,
			TimeCandidateID: vote.TimeCandidateID,
			TimeLabel:       vote.TimeLabel,
			IsAvailable:     vote.IsAvailable,
			Memo:            vote.Memo,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		r.store.timeVotes[row.ID] = row
	}

	r.store.replayTimeTallyLocked(vote.TimeCandidateID)

	return &domain.TimeVoteResult{
		Vote:    *row,
		Outcome: outcome,
		Tally: domain.TimeTally{
			CandidateID: vote.TimeCandidateID,
			Entries:     entriesFromLabels(candidate.Labels),
		},
	}, nil
}

func (r *fakeVoteRepo) GetTimeVote(_ context.Context, voteID uuid.UUID) (*domain.TimeVote, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v := r.store.timeVotes[voteID]
	if v == nil {
		return nil, domain.ErrVoteNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVoteRepo) RemoveTimeVote(_ context.Context, voteID uuid.UUID) (*domain.TimeTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v := r.store.timeVotes[voteID]
	if v == nil {
		return nil, domain.ErrVoteNotFound
	}
	candidateID := v.TimeCandidateID
	delete(r.store.timeVotes, voteID)
	r.store.replayTimeTallyLocked(candidateID)
	candidate := r.store.timeCandidates[candidateID]
	return &domain.TimeTally{
		CandidateID: candidateID,
		Entries:     entriesFromLabels(candidate.Labels),
	}, nil
}

func (r *fakeVoteRepo) GetTimeTally(_ context.Context, candidateID uuid.UUID) (*domain.TimeTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	candidate := r.store.timeCandidates[candidateID]
	if candidate == nil {
		return nil, domain.ErrCandidateNotFound
	}
	return &domain.TimeTally{
		CandidateID: candidateID,
		Entries:     entriesFromLabels(candidate.Labels),
	}, nil
}

func (r *fakeVoteRepo) ListTimeVotes(_ context.Context, candidateID uuid.UUID) ([]domain.TimeVote, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.TimeVote
	for _, v := range r.store.timeVotes {
		if v.TimeCandidateID == candidateID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) CastPlaceVote(_ context.Context, vote *domain.PlaceVote) (*domain.PlaceVoteResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	candidate := r.store.placeCandidates[vote.PlaceCandidateID]
	if candidate == nil {
		return nil, domain.ErrCandidateNotFound
	}
	participant := r.store.participants[vote.ParticipantID]
	if participant == nil || participant.MeetingID != candidate.MeetingID {
		return nil, domain.ErrParticipantNotFound
	}

	outcome := domain.VoteInserted
	now := time.Now()
	var row *domain.PlaceVote
	for _, v := range r.store.placeVotes {
		if v.ParticipantID == vote.ParticipantID && v.PlaceCandidateID == vote.PlaceCandidateID {
			v.IsAvailable = vote.IsAvailable
			v.Memo = vote.Memo
			v.UpdatedAt = now
			row = v
			outcome = domain.VoteUpdated
			break
		}
	}
	if row == nil {
		row = &domain.PlaceVote{
			ID:               uuid.New(),
			ParticipantID:    vote.ParticipantID,
			PlaceCandidateID: vote.PlaceCandidateID,
			IsAvailable:      vote.IsAvailable,
			Memo:             vote.Memo,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		r.store.placeVotes[row.ID] = row
	}

	r.store.replayPlaceTallyLocked(vote.PlaceCandidateID)

	return &domain.PlaceVoteResult{
		Vote:    *row,
		Outcome: outcome,
		Tally: domain.PlaceTally{
			CandidateID: vote.PlaceCandidateID,
			Available:   candidate.AvailableCount,
			Unavailable: candidate.UnavailableCount,
		},
	}, nil
}

func (r *fakeVoteRepo) GetPlaceVote(_ context.Context, voteID uuid.UUID) (*domain.PlaceVote, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v := r.store.placeVotes[voteID]
	if v == nil {
		return nil, domain.ErrVoteNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVoteRepo) RemovePlaceVote(_ context.Context, voteID uuid.UUID) (*domain.PlaceTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v := r.store.placeVotes[voteID]
	if v == nil {
		return nil, domain.ErrVoteNotFound
	}
	candidateID := v.PlaceCandidateID
	delete(r.store.placeVotes, voteID)
	r.store.replayPlaceTallyLocked(candidateID)
	candidate := r.store.placeCandidates[candidateID]
	return &domain.PlaceTally{
		CandidateID: candidateID,
		Available:   candidate.AvailableCount,
		Unavailable: candidate.UnavailableCount,
	}, nil
}

func (r *fakeVoteRepo) GetPlaceTally(_ context.Context, candidateID string) (*domain.PlaceTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	candidate := r.store.placeCandidates[candidateID]
	if candidate == nil {
		return nil, domain.ErrCandidateNotFound
	}
	return &domain.PlaceTally{
		CandidateID: candidateID,
		Available:   candidate.AvailableCount,
		Unavailable: candidate.UnavailableCount,
	}, nil
}

func (r *fakeVoteRepo) MeetingTimeTallies(_ context.Context, meetingID uuid.UUID) ([]domain.CandidateTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.CandidateTally
	for _, id := range r.store.candidateOrder {
		c := r.store.timeCandidates[id]
		if c == nil || c.MeetingID != meetingID {
			continue
		}
		out = append(out, domain.CandidateTally{
			CandidateID: c.ID,
			Entries:     entriesFromLabels(c.Labels),
			CreatedAt:   c.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return bestEntryCount(out[i].Entries) > bestEntryCount(out[j].Entries)
	})
	return out, nil
}

func bestEntryCount(entries []domain.TallyEntry) int {
	best := 0
	for _, e := range entries {
		if e.Count > best {
			best = e.Count
		}
	}
	return best
}

func (r *fakeVoteRepo) MeetingPlaceTallies(_ context.Context, meetingID uuid.UUID) ([]domain.PlaceTally, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.PlaceTally
	for _, c := range r.store.placeCandidates {
		if c.MeetingID != meetingID {
			continue
		}
		out = append(out, domain.PlaceTally{
			CandidateID: c.ID,
			Available:   c.AvailableCount,
			Unavailable: c.UnavailableCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Available > out[j].Available
	})
	return out, nil
}

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u := r.store.users[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpsertByOAuth(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.OAuthProvider == user.OAuthProvider && u.OAuthID == user.OAuthID {
			u.Email = user.Email
			u.Nickname = user.Nickname
			u.ProfileImageURL = user.ProfileImageURL
			u.UpdatedAt = time.Now()
			*user = *u
			return nil
		}
	}
	now := time.Now()
	user.IsActive = true
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.store.users[user.ID] = &cp
	return nil
}

type fakePlaceRepo struct{ store *memStore }

func (r *fakePlaceRepo) Upsert(_ context.Context, place *domain.Place) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *place
	r.store.places[place.ID] = &cp
	return nil
}

func (r *fakePlaceRepo) GetByID(_ context.Context, id string) (*domain.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.places[id]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// fixture wires the fakes into the services under test.
type fixture struct {
	store *memStore

	meetings     *fakeMeetingRepo
	participants *fakeParticipantRepo
	candidates   *fakeCandidateRepo
	votes        *fakeVoteRepo
	users        *fakeUserRepo
	places       *fakePlaceRepo

	cache *CacheService

	meetingService   *MeetingService
	voteService      *VoteService
	accessService    *AccessService
	candidateService *CandidateService
}

func newFixture(enforceDeadline bool) *fixture {
	store := newMemStore()
	log := testLogger()

	f := &fixture{
		store:        store,
		meetings:     &fakeMeetingRepo{store: store},
		participants: &fakeParticipantRepo{store: store},
		candidates:   &fakeCandidateRepo{store: store},
		votes:        &fakeVoteRepo{store: store},
		users:        &fakeUserRepo{store: store},
		places:       &fakePlaceRepo{store: store},
		cache:        NewCacheService(nil, log),
	}
	f.meetingService = NewMeetingService(f.meetings, f.participants, f.cache, log)
	f.voteService = NewVoteService(f.votes, f.candidates, f.participants, f.meetings, f.cache, log, enforceDeadline)
	f.accessService = NewAccessService(f.meetings, f.participants, f.cache, log)
	f.candidateService = NewCandidateService(f.candidates, f.meetings, f.cache, log)
	return f
}

// seedMeeting creates a host, a meeting and a joined host participant.
func (f *fixture) seedMeeting(hostID uuid.UUID, shareCode string) *domain.Meeting {
	meeting := &domain.Meeting{
		ID:        uuid.New(),
		Name:      "team dinner",
		CreatorID: hostID,
		ShareCode: shareCode,
	}
	_ = f.meetings.Create(context.Background(), meeting)
	return meeting
}

func (f *fixture) seedParticipant(meetingID uuid.UUID) *domain.Participant {
	p, _, _ := f.participants.JoinByOAuthKey(context.Background(), meetingID, "anon-"+uuid.NewString(), "")
	return p
}

// identityFor builds the credentials a caller re-presents for a seeded
// participant: the bound session user when there is one, otherwise the
// anonymous key plus the meeting's share code.
func identityFor(p *domain.Participant, shareCode string) *domain.ParticipantIdentity {
	if p.UserID != nil {
		return &domain.ParticipantIdentity{UserID: p.UserID}
	}
	return &domain.ParticipantIdentity{OAuthKey: p.OAuthKey, ShareCode: shareCode}
}

func (f *fixture) seedTimeCandidate(meetingID uuid.UUID, labels ...string) *domain.TimeCandidate {
	labelMap := make(map[string]int, len(labels))
	for _, l := range labels {
		labelMap[l] = 0
	}
	candidate := &domain.TimeCandidate{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Labels:    labelMap,
	}
	_ = f.candidates.CreateTimeCandidate(context.Background(), candidate)
	return candidate
}

func (f *fixture) seedPlaceCandidate(meetingID uuid.UUID, placeID string) *domain.PlaceCandidate {
	candidate := &domain.PlaceCandidate{
		ID:        placeID,
		MeetingID: meetingID,
	}
	_ = f.candidates.CreatePlaceCandidate(context.Background(), candidate)
	return candidate
}
