package services

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

var errStoreDown = errors.New("store unavailable")

type pairKey struct {
	userID string
	postID primitive.ObjectID
}

type edgeKey struct {
	follower  string
	following string
}

type edge struct {
	key       edgeKey
	createdAt time.Time
}

// memStore is an in-memory stand-in for both databases.
type memStore struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[string]*models.User
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	likes         map[pairKey]time.Time
	saved         map[pairKey]time.Time
	follows       []edge
	notifications []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[string]*models.User{},
		posts:    map[primitive.ObjectID]*models.Post{},
		comments: map[primitive.ObjectID]*models.Comment{},
		likes:    map[pairKey]time.Time{},
		saved:    map[pairKey]time.Time{},
	}
}

// tick returns strictly increasing timestamps. Callers hold mu.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func conflict(resource string) error {
	return &apperror.AppError{Kind: apperror.ErrConflict, Message: resource + " already exists"}
}

func parseHex(id, resource string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.InvalidArgument("invalid " + resource + " id")
	}
	return objID, nil
}

// --- users ---

type memUsers struct{ s *memStore }

var _ repositories.UserRepository = (*memUsers)(nil)

func (r *memUsers) CreateUser(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return conflict("user")
		}
		if u.FirebaseUID != nil && existing.FirebaseUID != nil && *existing.FirebaseUID == *u.FirebaseUID {
			return conflict("user")
		}
	}
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	u.CreatedAt = r.s.tick()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (r *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (r *memUsers) GetCompactByIDs(_ context.Context, ids []string) (map[string]models.UserCompact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]models.UserCompact{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u.ToCompact()
		}
	}
	return out, nil
}

func (r *memUsers) UpdateUser(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUsers) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.User
	for _, u := range r.s.users {
		if strings.Contains(u.Username, q) || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- posts ---

type memPosts struct{ s *memStore }

var _ repositories.PostRepository = (*memPosts)(nil)

func (r *memPosts) CreatePost(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.posts[p.ID] = &cp
	return nil
}

func (r *memPosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := parseHex(id, "post")
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[objID]
	if !ok {
		return nil, apperror.NotFound("post")
	}
	cp := *p
	return &cp, nil
}

func (r *memPosts) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPosts) matching(match func(*models.Post) bool) []models.Post {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Post
	for _, p := range r.s.posts {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func window(posts []models.Post, skip, limit int64) []models.Post {
	if skip >= int64(len(posts)) {
		return []models.Post{}
	}
	end := skip + limit
	if end > int64(len(posts)) {
		end = int64(len(posts))
	}
	return posts[skip:end]
}

func (r *memPosts) GetPostsByAuthor(_ context.Context, authorID string, skip, limit int64) ([]models.Post, error) {
	return window(r.matching(func(p *models.Post) bool { return p.AuthorID == authorID }), skip, limit), nil
}

func (r *memPosts) CountByAuthor(_ context.Context, authorID string) (int64, error) {
	return int64(len(r.matching(func(p *models.Post) bool { return p.AuthorID == authorID }))), nil
}

func (r *memPosts) FindFeed(_ context.Context, f repositories.FeedFilter, skip, limit int64) ([]models.Post, error) {
	return window(r.matching(func(p *models.Post) bool { return f.Matches(p.AuthorID) }), skip, limit), nil
}

func (r *memPosts) CountFeed(_ context.Context, f repositories.FeedFilter) (int64, error) {
	return int64(len(r.matching(func(p *models.Post) bool { return f.Matches(p.AuthorID) }))), nil
}

func (r *memPosts) SampleFeed(_ context.Context, f repositories.FeedFilter, size int) ([]models.Post, error) {
	all := r.matching(func(p *models.Post) bool { return f.Matches(p.AuthorID) })
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > size {
		all = all[:size]
	}
	return all, nil
}

func (r *memPosts) UpdateCaption(_ context.Context, id primitive.ObjectID, caption string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperror.NotFound("post")
	}
	p.Caption = caption
	cp := *p
	return &cp, nil
}

func (r *memPosts) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return apperror.NotFound("post")
	}
	delete(r.s.posts, id)
	return nil
}

// --- comments ---

type memComments struct {
	s                *memStore
	postLookupCalls  int
	failDeleteByPost bool
}

var _ repositories.CommentRepository = (*memComments)(nil)

func (r *memComments) CreateComment(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = r.s.tick()
	cp := *c
	cp.Likes = append([]string{}, c.Likes...)
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *memComments) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	objID, err := parseHex(id, "comment")
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[objID]
	if !ok {
		return nil, apperror.NotFound("comment")
	}
	cp := *c
	cp.Likes = append([]string{}, c.Likes...)
	return &cp, nil
}

func (r *memComments) GetCommentsByPost(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	r.s.mu.Lock()
	var out []models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	r.s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.Comment{}, nil
	}
	end := skip + limit
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[skip:end], nil
}

func (r *memComments) CountByPosts(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[primitive.ObjectID]int64{}
	for _, id := range ids {
		for _, c := range r.s.comments {
			if c.PostID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (r *memComments) PostIDsForComments(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(ids) > 0 {
		r.postLookupCalls++
	}
	out := map[primitive.ObjectID]primitive.ObjectID{}
	for _, id := range ids {
		if c, ok := r.s.comments[id]; ok {
			out[id] = c.PostID
		}
	}
	return out, nil
}

func (r *memComments) mutateLikes(id primitive.ObjectID, fn func([]string) []string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment")
	}
	c.Likes = fn(c.Likes)
	cp := *c
	cp.Likes = append([]string{}, c.Likes...)
	return &cp, nil
}

func (r *memComments) AddLike(_ context.Context, id primitive.ObjectID, userID string) (*models.Comment, error) {
	return r.mutateLikes(id, func(likes []string) []string {
		for _, l := range likes {
			if l == userID {
				return likes
			}
		}
		return append(likes, userID)
	})
}

func (r *memComments) RemoveLike(_ context.Context, id primitive.ObjectID, userID string) (*models.Comment, error) {
	return r.mutateLikes(id, func(likes []string) []string {
		out := likes[:0]
		for _, l := range likes {
			if l != userID {
				out = append(out, l)
			}
		}
		return out
	})
}

func (r *memComments) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	if r.failDeleteByPost {
		return 0, errStoreDown
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

// --- likes and saved posts share the pair-set shape ---

type memPairs struct {
	s *memStore
	// pick selects which pair set of the store this repository uses.
	pick func(*memStore) map[pairKey]time.Time
	// staleReads makes existence checks report absent, as a reader racing a
	// concurrent insert would.
	staleReads bool
}

func (r *memPairs) create(userID string, postID primitive.ObjectID, resource string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.pick(r.s)
	key := pairKey{userID, postID}
	if _, ok := set[key]; ok {
		return conflict(resource)
	}
	set[key] = r.s.tick()
	return nil
}

func (r *memPairs) remove(userID string, postID primitive.ObjectID) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.pick(r.s)
	key := pairKey{userID, postID}
	_, ok := set[key]
	delete(set, key)
	return ok
}

func (r *memPairs) has(userID string, postID primitive.ObjectID) bool {
	if r.staleReads {
		return false
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.pick(r.s)[pairKey{userID, postID}]
	return ok
}

func (r *memPairs) members(userID string, ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	out := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if r.has(userID, id) {
			out[id] = true
		}
	}
	return out
}

func (r *memPairs) countPost(postID primitive.ObjectID) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.pick(r.s) {
		if k.postID == postID {
			n++
		}
	}
	return n
}

func (r *memPairs) deletePost(postID primitive.ObjectID) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.pick(r.s)
	var n int64
	for k := range set {
		if k.postID == postID {
			delete(set, k)
			n++
		}
	}
	return n
}

type memLikes struct{ memPairs }

var _ repositories.LikeRepository = (*memLikes)(nil)

func (r *memLikes) CreateLike(_ context.Context, userID string, postID primitive.ObjectID) error {
	return r.create(userID, postID, "like")
}
func (r *memLikes) DeleteLike(_ context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	return r.remove(userID, postID), nil
}
func (r *memLikes) HasLiked(_ context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	return r.has(userID, postID), nil
}
func (r *memLikes) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	return r.countPost(postID), nil
}
func (r *memLikes) CountByPosts(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := map[primitive.ObjectID]int64{}
	for _, id := range ids {
		if n := r.countPost(id); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}
func (r *memLikes) LikedPostIDs(_ context.Context, userID string, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return r.members(userID, ids), nil
}
func (r *memLikes) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	return r.deletePost(postID), nil
}

type memSaved struct{ memPairs }

var _ repositories.SavedPostRepository = (*memSaved)(nil)

func (r *memSaved) SavePost(_ context.Context, userID string, postID primitive.ObjectID) error {
	return r.create(userID, postID, "saved post")
}
func (r *memSaved) UnsavePost(_ context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	return r.remove(userID, postID), nil
}
func (r *memSaved) IsSaved(_ context.Context, userID string, postID primitive.ObjectID) (bool, error) {
	return r.has(userID, postID), nil
}
func (r *memSaved) SavedPostIDs(_ context.Context, userID string, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return r.members(userID, ids), nil
}
func (r *memSaved) ListByUser(_ context.Context, userID string, skip, limit int64) ([]models.SavedPost, error) {
	r.s.mu.Lock()
	var out []models.SavedPost
	for k, at := range r.s.saved {
		if k.userID == userID {
			out = append(out, models.SavedPost{UserID: userID, PostID: k.postID, CreatedAt: at})
		}
	}
	r.s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.SavedPost{}, nil
	}
	end := skip + limit
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[skip:end], nil
}
func (r *memSaved) CountByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.saved {
		if k.userID == userID {
			n++
		}
	}
	return n, nil
}
func (r *memSaved) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	return r.deletePost(postID), nil
}

// --- follows ---

type memFollows struct {
	s          *memStore
	staleReads bool
}

var _ repositories.FollowRepository = (*memFollows)(nil)

func (r *memFollows) CreateFollow(_ context.Context, follower, following string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := edgeKey{follower, following}
	for _, e := range r.s.follows {
		if e.key == key {
			return conflict("follow")
		}
	}
	r.s.follows = append(r.s.follows, edge{key: key, createdAt: r.s.tick()})
	return nil
}

func (r *memFollows) DeleteFollow(_ context.Context, follower, following string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := edgeKey{follower, following}
	for i, e := range r.s.follows {
		if e.key == key {
			r.s.follows = append(r.s.follows[:i], r.s.follows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memFollows) IsFollowing(_ context.Context, follower, following string) (bool, error) {
	if r.staleReads {
		return false, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.follows {
		if e.key == (edgeKey{follower, following}) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memFollows) edges(match func(edgeKey) bool) []edge {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []edge
	for _, e := range r.s.follows {
		if match(e.key) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].createdAt.After(out[j].createdAt) })
	return out
}

func (r *memFollows) GetFollowingIDs(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	for _, e := range r.edges(func(k edgeKey) bool { return k.follower == userID }) {
		ids = append(ids, e.key.following)
	}
	return ids, nil
}

func (r *memFollows) GetFollowersCount(_ context.Context, userID string) (int64, error) {
	return int64(len(r.edges(func(k edgeKey) bool { return k.following == userID }))), nil
}

func (r *memFollows) GetFollowingCount(_ context.Context, userID string) (int64, error) {
	return int64(len(r.edges(func(k edgeKey) bool { return k.follower == userID }))), nil
}

func pageIDs(edges []edge, pick func(edgeKey) string, skip, limit int64) []string {
	ids := []string{}
	for i := skip; i < int64(len(edges)) && i < skip+limit; i++ {
		ids = append(ids, pick(edges[i].key))
	}
	return ids
}

func (r *memFollows) ListFollowerIDs(_ context.Context, userID string, skip, limit int64) ([]string, error) {
	edges := r.edges(func(k edgeKey) bool { return k.following == userID })
	return pageIDs(edges, func(k edgeKey) string { return k.follower }, skip, limit), nil
}

func (r *memFollows) ListFollowingIDs(_ context.Context, userID string, skip, limit int64) ([]string, error) {
	edges := r.edges(func(k edgeKey) bool { return k.follower == userID })
	return pageIDs(edges, func(k edgeKey) string { return k.following }, skip, limit), nil
}

// --- notifications ---

type memNotifications struct {
	s          *memStore
	failWrites bool
}

var _ repositories.NotificationRepository = (*memNotifications)(nil)

func (r *memNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	if r.failWrites {
		return errStoreDown
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = r.s.tick()
	n.Read = false
	cp := *n
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r *memNotifications) CreateIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	if r.failWrites {
		return false, errStoreDown
	}
	r.s.mu.Lock()
	for _, existing := range r.s.notifications {
		if existing.UserID == n.UserID && existing.ActorID == n.ActorID &&
			existing.Type == n.Type && existing.EntityID == n.EntityID {
			r.s.mu.Unlock()
			return false, nil
		}
	}
	r.s.mu.Unlock()
	return true, r.CreateNotification(ctx, n)
}

func (r *memNotifications) DeleteMatching(_ context.Context, userID, actorID string, typ models.NotificationType, entityID string) (int64, error) {
	return r.deleteWhere(func(n *models.Notification) bool {
		return n.UserID == userID && n.ActorID == actorID && n.Type == typ && n.EntityID == entityID
	}), nil
}

func (r *memNotifications) DeleteByEntity(_ context.Context, typ models.NotificationType, entityID string) (int64, error) {
	return r.deleteWhere(func(n *models.Notification) bool { return n.Type == typ && n.EntityID == entityID }), nil
}

func (r *memNotifications) deleteWhere(match func(*models.Notification) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.notifications[:0]
	var n int64
	for _, row := range r.s.notifications {
		if match(row) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.s.notifications = kept
	return n
}

func (r *memNotifications) ListForUser(_ context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, row := range r.s.notifications {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (r *memNotifications) MarkRead(_ context.Context, userID string, id primitive.ObjectID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.notifications {
		if row.ID == id && row.UserID == userID {
			row.Read = true
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("notification")
}

func (r *memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, row := range r.s.notifications {
		if row.UserID == userID && !row.Read {
			row.Read = true
			n++
		}
	}
	return n, nil
}

func (r *memNotifications) DeleteNotification(_ context.Context, userID string, id primitive.ObjectID) error {
	if r.deleteWhere(func(n *models.Notification) bool { return n.ID == id && n.UserID == userID }) == 0 {
		return apperror.NotFound("notification")
	}
	return nil
}

// rows returns the notifications of recipient filtered by type.
func (r *memNotifications) rows(recipient string, typ models.NotificationType) []models.Notification {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == recipient && n.Type == typ {
			out = append(out, *n)
		}
	}
	return out
}

func (r *memNotifications) total() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.notifications)
}

// --- harness ---

type harness struct {
	store         *memStore
	users         *memUsers
	posts         *memPosts
	comments      *memComments
	likes         *memLikes
	saved         *memSaved
	follows       *memFollows
	notifications *memNotifications

	enricher   *PostEnricher
	feed       *FeedService
	engagement *EngagementService
	notifs     *NotificationService
	postSvc    *PostService
	commentSvc *CommentService
	profiles   *ProfileService
}

// newHarness wires every service over one in-memory store. When house is
// non-empty a user with that username is created and excluded from feeds.
func newHarness(t *testing.T, house string) *harness {
	t.Helper()
	s := newMemStore()
	h := &harness{
		store:         s,
		users:         &memUsers{s: s},
		posts:         &memPosts{s: s},
		comments:      &memComments{s: s},
		likes:         &memLikes{memPairs{s: s, pick: func(m *memStore) map[pairKey]time.Time { return m.likes }}},
		saved:         &memSaved{memPairs{s: s, pick: func(m *memStore) map[pairKey]time.Time { return m.saved }}},
		follows:       &memFollows{s: s},
		notifications: &memNotifications{s: s},
	}

	var houseID string
	if house != "" {
		houseID = h.user(t, house)
	}
	resolved, err := ResolveHouseAccount(context.Background(), h.users, house)
	require.NoError(t, err)
	require.Equal(t, houseID, resolved)

	h.enricher = NewPostEnricher(h.users, h.likes, h.comments, h.saved)
	h.feed = NewFeedService(h.posts, h.follows, h.users, h.enricher, resolved)
	h.engagement = NewEngagementService(h.posts, h.comments, h.likes, h.saved, h.follows, h.users, h.notifications)
	h.notifs = NewNotificationService(h.notifications, h.comments, h.users)
	h.postSvc = NewPostService(h.posts, h.users, h.likes, h.comments, h.saved, h.notifications, h.enricher)
	h.commentSvc = NewCommentService(h.comments, h.posts, h.users)
	h.profiles = NewProfileService(h.users, h.follows, h.posts)
	return h
}

func (h *harness) user(t *testing.T, username string) string {
	t.Helper()
	u := &models.User{
		Email:        gofakeit.Email(),
		Username:     username,
		Name:         gofakeit.Name(),
		Avatar:       gofakeit.URL(),
		PasswordHash: "secret-hash",
	}
	require.NoError(t, h.users.CreateUser(context.Background(), u))
	return u.ID
}

func (h *harness) post(t *testing.T, authorID string) string {
	t.Helper()
	p := &models.Post{AuthorID: authorID, Image: gofakeit.URL(), Caption: gofakeit.Sentence(6)}
	require.NoError(t, h.posts.CreatePost(context.Background(), p))
	return p.ID.Hex()
}

func (h *harness) follow(t *testing.T, follower, following string) {
	t.Helper()
	require.NoError(t, h.follows.CreateFollow(context.Background(), follower, following))
}

func (h *harness) comment(t *testing.T, authorID, postID string) string {
	t.Helper()
	view, err := h.engagement.CreateComment(context.Background(), authorID, postID, gofakeit.Sentence(4))
	require.NoError(t, err)
	return view.ID
}
