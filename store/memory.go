package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// edge is a directed pair of ids used as a composite key for association
// tables.
type edge struct {
	from, to int64
}

// MemoryStore is an in-memory implementation of Store with the same
// constraint behavior as PostgresStore, including the constraint names
// reported on violations. It is safe for concurrent use and is what the
// service tests run against.
type MemoryStore struct {
	mu sync.Mutex

	nextUserID  int64
	nextPostID  int64
	nextTagID   int64
	nextPhotoID int64

	users  map[int64]User
	posts  map[int64]Post
	tags   map[int64]Tag
	photos map[int64]Photo

	postTags map[edge]struct{} // postID -> tagID
	follows  map[edge]struct{} // followerID -> followedID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]User),
		posts:    make(map[int64]Post),
		tags:     make(map[int64]Tag),
		photos:   make(map[int64]Photo),
		postTags: make(map[edge]struct{}),
		follows:  make(map[edge]struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

// --- Users ---

func (m *MemoryStore) CreateUser(_ context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Name == u.Name {
			return nil, &UniqueViolationError{Constraint: "users_name_key"}
		}
		if existing.Email == u.Email {
			return nil, &UniqueViolationError{Constraint: "users_email_key"}
		}
	}

	m.nextUserID++
	u.ID = m.nextUserID
	u.CreatedAt = time.Now()
	m.users[u.ID] = *u
	return u, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	for _, p := range m.posts {
		if p.UserID == id {
			return &ForeignKeyViolationError{Constraint: "posts_user_id_fkey"}
		}
	}
	for _, t := range m.tags {
		if t.UserID == id {
			return &ForeignKeyViolationError{Constraint: "tags_user_id_fkey"}
		}
	}
	for _, ph := range m.photos {
		if ph.UserID == id {
			return &ForeignKeyViolationError{Constraint: "photos_user_id_fkey"}
		}
	}
	for e := range m.follows {
		if e.from == id || e.to == id {
			delete(m.follows, e)
		}
	}
	delete(m.users, id)
	return nil
}

// --- Follow edges ---

func (m *MemoryStore) Follow(_ context.Context, followerID, followedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[followerID]; !ok {
		return &ForeignKeyViolationError{Constraint: "followers_follower_id_fkey"}
	}
	if _, ok := m.users[followedID]; !ok {
		return &ForeignKeyViolationError{Constraint: "followers_followed_id_fkey"}
	}
	m.follows[edge{from: followerID, to: followedID}] = struct{}{}
	return nil
}

func (m *MemoryStore) Unfollow(_ context.Context, followerID, followedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.follows, edge{from: followerID, to: followedID})
	return nil
}

func (m *MemoryStore) Followers(_ context.Context, userID int64) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []User
	for e := range m.follows {
		if e.to == userID {
			if u, ok := m.users[e.from]; ok {
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) Following(_ context.Context, userID int64) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []User
	for e := range m.follows {
		if e.from == userID {
			if u, ok := m.users[e.to]; ok {
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// --- Posts ---

func (m *MemoryStore) CreatePost(_ context.Context, p *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[p.UserID]; !ok {
		return nil, &ForeignKeyViolationError{Constraint: "posts_user_id_fkey"}
	}
	m.nextPostID++
	p.ID = m.nextPostID
	p.Upvotes = 0
	p.Downvotes = 0
	p.CreatedAt = time.Now()
	m.posts[p.ID] = *p
	return p, nil
}

func (m *MemoryStore) GetPost(_ context.Context, id int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListPosts(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedPostsLocked(), nil
}

func (m *MemoryStore) ListPostViews(_ context.Context) ([]PostView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []PostView
	for _, p := range m.sortedPostsLocked() {
		v := PostView{Post: p}
		if u, ok := m.users[p.UserID]; ok {
			name, email := u.Name, u.Email
			v.AuthorName = &name
			v.AuthorEmail = &email
		}
		var firstPhoto int64
		for _, ph := range m.photos {
			if ph.PostID == p.ID && (firstPhoto == 0 || ph.ID < firstPhoto) {
				firstPhoto = ph.ID
			}
		}
		if firstPhoto != 0 {
			id := firstPhoto
			v.PhotoID = &id
		}
		views = append(views, v)
	}
	return views, nil
}

func (m *MemoryStore) UpdatePost(_ context.Context, id int64, title, content *string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if content != nil {
		p.Content = *content
	}
	m.posts[id] = p
	return &p, nil
}

func (m *MemoryStore) DeletePost(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return nil, ErrNotFound
	}
	for e := range m.postTags {
		if e.from == id {
			delete(m.postTags, e)
		}
	}
	var locations []string
	for phID, ph := range m.photos {
		if ph.PostID == id {
			locations = append(locations, ph.Location)
			delete(m.photos, phID)
		}
	}
	delete(m.posts, id)
	return locations, nil
}

func (m *MemoryStore) UpvotePost(_ context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.Upvotes++
	m.posts[id] = p
	return p.Upvotes, nil
}

func (m *MemoryStore) DownvotePost(_ context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.Downvotes++
	m.posts[id] = p
	return p.Downvotes, nil
}

// --- Tags ---

func (m *MemoryStore) CreateTag(_ context.Context, t *Tag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[t.UserID]; !ok {
		return nil, &ForeignKeyViolationError{Constraint: "tags_user_id_fkey"}
	}
	for _, existing := range m.tags {
		if existing.Name == t.Name {
			return nil, &UniqueViolationError{Constraint: "tags_name_key"}
		}
	}
	m.nextTagID++
	t.ID = m.nextTagID
	m.tags[t.ID] = *t
	return t, nil
}

func (m *MemoryStore) GetTag(_ context.Context, id int64) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) ListTags(_ context.Context) ([]Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]Tag, 0, len(m.tags))
	for _, t := range m.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[id]; !ok {
		return ErrNotFound
	}
	for e := range m.postTags {
		if e.to == id {
			delete(m.postTags, e)
		}
	}
	delete(m.tags, id)
	return nil
}

func (m *MemoryStore) AssociateTag(_ context.Context, tagID, postID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[postID]; !ok {
		return &ForeignKeyViolationError{Constraint: "post_tags_post_id_fkey"}
	}
	if _, ok := m.tags[tagID]; !ok {
		return &ForeignKeyViolationError{Constraint: "post_tags_tag_id_fkey"}
	}
	m.postTags[edge{from: postID, to: tagID}] = struct{}{}
	return nil
}

func (m *MemoryStore) TagsForPost(_ context.Context, postID int64) ([]Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []Tag
	for e := range m.postTags {
		if e.from == postID {
			if t, ok := m.tags[e.to]; ok {
				tags = append(tags, t)
			}
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MemoryStore) PostsForTag(_ context.Context, tagID int64) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []Post
	for e := range m.postTags {
		if e.to == tagID {
			if p, ok := m.posts[e.from]; ok {
				posts = append(posts, p)
			}
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

// --- Photos ---

func (m *MemoryStore) CreatePhoto(_ context.Context, p *Photo) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[p.UserID]; !ok {
		return nil, &ForeignKeyViolationError{Constraint: "photos_user_id_fkey"}
	}
	if _, ok := m.posts[p.PostID]; !ok {
		return nil, &ForeignKeyViolationError{Constraint: "photos_post_id_fkey"}
	}
	m.nextPhotoID++
	p.ID = m.nextPhotoID
	p.UploadedAt = time.Now()
	m.photos[p.ID] = *p
	return p, nil
}

func (m *MemoryStore) GetPhoto(_ context.Context, id int64) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListPhotos(_ context.Context) ([]Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	photos := make([]Photo, 0, len(m.photos))
	for _, p := range m.photos {
		photos = append(photos, p)
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos, nil
}

func (m *MemoryStore) DeletePhoto(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[id]; !ok {
		return ErrNotFound
	}
	delete(m.photos, id)
	return nil
}

// sortedPostsLocked returns posts ordered by id. Callers must hold mu.
func (m *MemoryStore) sortedPostsLocked() []Post {
	posts := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}
