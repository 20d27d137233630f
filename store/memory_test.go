package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func seedUser(t *testing.T, m *MemoryStore, name, email string) *User {
	t.Helper()
	u, err := m.CreateUser(context.Background(), &User{Name: name, Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func seedPost(t *testing.T, m *MemoryStore, userID int64, title string) *Post {
	t.Helper()
	p, err := m.CreatePost(context.Background(), &Post{UserID: userID, Title: title, Content: "body"})
	if err != nil {
		t.Fatalf("CreatePost(%s): %v", title, err)
	}
	return p
}

func TestCreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedUser(t, m, "alice", "alice@example.com")

	tests := []struct {
		name       string
		user       User
		constraint string
	}{
		{"duplicate name", User{Name: "alice", Email: "other@example.com"}, "users_name_key"},
		{"duplicate email", User{Name: "bob", Email: "alice@example.com"}, "users_email_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateUser(ctx, &tt.user)
			var uv *UniqueViolationError
			if !errors.As(err, &uv) {
				t.Fatalf("expected UniqueViolationError, got %v", err)
			}
			if uv.Constraint != tt.constraint {
				t.Errorf("constraint = %q, want %q", uv.Constraint, tt.constraint)
			}
		})
	}
}

func TestDeleteUserBlocksOnOwnedRows(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	seedPost(t, m, owner.ID, "dinner")

	err := m.DeleteUser(ctx, owner.ID)
	var fk *ForeignKeyViolationError
	if !errors.As(err, &fk) {
		t.Fatalf("expected ForeignKeyViolationError, got %v", err)
	}
	if _, err := m.GetUser(ctx, owner.ID); err != nil {
		t.Fatalf("user should survive a blocked delete: %v", err)
	}
}

func TestDeleteUserCascadesFollowEdges(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	a := seedUser(t, m, "alice", "alice@example.com")
	b := seedUser(t, m, "bob", "bob@example.com")

	if err := m.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := m.Follow(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	if err := m.DeleteUser(ctx, a.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	followers, err := m.Followers(ctx, b.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 0 {
		t.Errorf("expected no followers after cascade, got %d", len(followers))
	}
	following, err := m.Following(ctx, b.ID)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	if len(following) != 0 {
		t.Errorf("expected no following after cascade, got %d", len(following))
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	a := seedUser(t, m, "alice", "alice@example.com")
	b := seedUser(t, m, "bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		if err := m.Follow(ctx, a.ID, b.ID); err != nil {
			t.Fatalf("Follow #%d: %v", i+1, err)
		}
	}
	followers, err := m.Followers(ctx, b.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 1 {
		t.Fatalf("expected 1 follower, got %d", len(followers))
	}

	if err := m.Unfollow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if err := m.Unfollow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("repeated Unfollow should be a no-op: %v", err)
	}
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")

	tag, err := m.CreateTag(ctx, &Tag{UserID: owner.ID, Name: "vegan"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := m.AssociateTag(ctx, tag.ID, post.ID); err != nil {
		t.Fatalf("AssociateTag: %v", err)
	}
	photo, err := m.CreatePhoto(ctx, &Photo{UserID: owner.ID, PostID: post.ID, Location: "blob-1"})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	locations, err := m.DeletePost(ctx, post.ID)
	if err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if len(locations) != 1 || locations[0] != "blob-1" {
		t.Errorf("locations = %v, want [blob-1]", locations)
	}
	if _, err := m.GetPhoto(ctx, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("photo row should be gone, got %v", err)
	}
	// The tag itself survives, only the link is removed.
	if _, err := m.GetTag(ctx, tag.ID); err != nil {
		t.Errorf("tag should survive post deletion: %v", err)
	}
	posts, err := m.PostsForTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("PostsForTag: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts for tag after cascade, got %d", len(posts))
	}
}

func TestDeleteTagKeepsPosts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")
	tag, err := m.CreateTag(ctx, &Tag{UserID: owner.ID, Name: "vegan"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := m.AssociateTag(ctx, tag.ID, post.ID); err != nil {
		t.Fatalf("AssociateTag: %v", err)
	}

	if err := m.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if _, err := m.GetPost(ctx, post.ID); err != nil {
		t.Errorf("post should survive tag deletion: %v", err)
	}
	tagsForPost, err := m.TagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("TagsForPost: %v", err)
	}
	if len(tagsForPost) != 0 {
		t.Errorf("expected no tags for post, got %d", len(tagsForPost))
	}
}

func TestAssociateTagIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")
	tag, err := m.CreateTag(ctx, &Tag{UserID: owner.ID, Name: "vegan"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := m.AssociateTag(ctx, tag.ID, post.ID); err != nil {
			t.Fatalf("AssociateTag #%d: %v", i+1, err)
		}
	}
	tagsForPost, err := m.TagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("TagsForPost: %v", err)
	}
	if len(tagsForPost) != 1 {
		t.Errorf("expected exactly 1 tag link, got %d", len(tagsForPost))
	}
}

func TestConcurrentUpvotesAreExact(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := m.UpvotePost(ctx, post.ID); err != nil {
				t.Errorf("UpvotePost: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := m.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Upvotes != n {
		t.Errorf("upvotes = %d, want %d", got.Upvotes, n)
	}
	if got.Downvotes != 0 {
		t.Errorf("downvotes = %d, want 0", got.Downvotes)
	}
}

func TestUpdatePostPartial(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")

	newTitle := "supper"
	updated, err := m.UpdatePost(ctx, post.ID, &newTitle, nil)
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "supper" {
		t.Errorf("title = %q, want %q", updated.Title, "supper")
	}
	if updated.Content != "body" {
		t.Errorf("content = %q, want unchanged %q", updated.Content, "body")
	}
}

func TestListPostViewsJoinsAuthorAndFirstPhoto(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := seedUser(t, m, "alice", "alice@example.com")
	post := seedPost(t, m, owner.ID, "dinner")

	first, err := m.CreatePhoto(ctx, &Photo{UserID: owner.ID, PostID: post.ID, Location: "a"})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}
	if _, err := m.CreatePhoto(ctx, &Photo{UserID: owner.ID, PostID: post.ID, Location: "b"}); err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	views, err := m.ListPostViews(ctx)
	if err != nil {
		t.Fatalf("ListPostViews: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v.AuthorName == nil || *v.AuthorName != "alice" {
		t.Errorf("author name = %v, want alice", v.AuthorName)
	}
	if v.PhotoID == nil || *v.PhotoID != first.ID {
		t.Errorf("photo id = %v, want %d", v.PhotoID, first.ID)
	}
}
