package posts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/blobstore"
	"github.com/user/mealfeed-go/store"
)

func newTestService(t *testing.T) (*PostService, *store.MemoryStore, *blobstore.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	blobs := blobstore.NewMemoryStore()
	return NewPostService(st, blobs), st, blobs
}

func seedUser(t *testing.T, st *store.MemoryStore, name, email string) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), &store.User{Name: name, Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateRequiresExistingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreatePostRequest{Title: "t", Content: "c", UserID: 42})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVoteCounters(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	owner := seedUser(t, st, "alice", "alice@example.com")
	post, err := svc.Create(ctx, CreatePostRequest{Title: "dinner", Content: "soup", UserID: owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for want := 1; want <= 3; want++ {
		got, err := svc.Upvote(ctx, post.ID)
		if err != nil {
			t.Fatalf("Upvote: %v", err)
		}
		if got != want {
			t.Errorf("upvotes = %d, want %d", got, want)
		}
	}
	down, err := svc.Downvote(ctx, post.ID)
	if err != nil {
		t.Fatalf("Downvote: %v", err)
	}
	if down != 1 {
		t.Errorf("downvotes = %d, want 1", down)
	}

	if _, err := svc.Upvote(ctx, 999); !apperror.IsNotFound(err) {
		t.Errorf("upvoting missing post: got %v, want not found", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	owner := seedUser(t, st, "alice", "alice@example.com")
	post, err := svc.Create(ctx, CreatePostRequest{Title: "dinner", Content: "soup", UserID: owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := "stew"
	updated, err := svc.Update(ctx, post.ID, UpdatePostRequest{Content: &content})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "dinner" {
		t.Errorf("title = %q, want unchanged", updated.Title)
	}
	if updated.Content != "stew" {
		t.Errorf("content = %q, want stew", updated.Content)
	}
}

func TestDeleteRemovesAttachedBlobs(t *testing.T) {
	ctx := context.Background()
	svc, st, blobs := newTestService(t)
	owner := seedUser(t, st, "alice", "alice@example.com")
	post, err := svc.Create(ctx, CreatePostRequest{Title: "dinner", Content: "soup", UserID: owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	loc, err := blobs.Put(ctx, "a.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := st.CreatePhoto(ctx, &store.Photo{UserID: owner.ID, PostID: post.ID, Location: loc}); err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	if err := svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if blobs.Len() != 0 {
		t.Errorf("expected blobs to be cleaned up, %d remain", blobs.Len())
	}
	if _, err := svc.Get(ctx, post.ID); !apperror.IsNotFound(err) {
		t.Errorf("post should be gone, got %v", err)
	}
}

func TestFeedProjection(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	owner := seedUser(t, st, "alice", "alice@example.com")
	post, err := svc.Create(ctx, CreatePostRequest{Title: "dinner", Content: "soup", UserID: owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	photo, err := st.CreatePhoto(ctx, &store.Photo{UserID: owner.ID, PostID: post.ID, Location: "a.png"})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	feed, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(feed))
	}
	entry := feed[0]
	if entry.User.Name != "alice" || entry.User.Email != "alice@example.com" {
		t.Errorf("author = %+v, want alice", entry.User)
	}
	if want := fmt.Sprintf("/api/photos/%d/file", photo.ID); entry.ImageURL != want {
		t.Errorf("image url = %q, want %q", entry.ImageURL, want)
	}
}

func TestFeedEntryWithMissingAuthor(t *testing.T) {
	// A view row without author fields renders the placeholder rather than
	// leaking empty identity.
	view := store.PostView{Post: store.Post{ID: 1, Title: "t"}}
	resp := toPostResponse(&view)
	if resp.User.Name != "Unknown User" {
		t.Errorf("author name = %q, want Unknown User", resp.User.Name)
	}
	if resp.User.Email != "" {
		t.Errorf("author email = %q, want empty", resp.User.Email)
	}
	if resp.ImageURL != "" {
		t.Errorf("image url = %q, want empty", resp.ImageURL)
	}
}
