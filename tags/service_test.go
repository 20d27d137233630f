package tags

import (
	"context"
	"testing"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/store"
)

func setup(t *testing.T) (*TagService, *store.MemoryStore, *store.User, *store.Post) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	user, err := st.CreateUser(ctx, &store.User{Name: "alice", Email: "alice@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	post, err := st.CreatePost(ctx, &store.Post{UserID: user.ID, Title: "dinner", Content: "soup"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return NewTagService(st), st, user, post
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	svc, _, user, _ := setup(t)

	tag, err := svc.Create(ctx, CreateTagRequest{Name: "vegan", UserID: user.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tag.ID == 0 {
		t.Error("expected assigned tag id")
	}

	t.Run("duplicate name conflicts globally", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTagRequest{Name: "vegan", UserID: user.ID})
		if !apperror.IsConflictError(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTagRequest{Name: "spicy", UserID: 999})
		if !apperror.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestAssociate(t *testing.T) {
	ctx := context.Background()
	svc, _, user, post := setup(t)
	tag, err := svc.Create(ctx, CreateTagRequest{Name: "vegan", UserID: user.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Associating twice is a no-op, not an error.
	for i := 0; i < 2; i++ {
		if err := svc.Associate(ctx, tag.ID, post.ID); err != nil {
			t.Fatalf("Associate #%d: %v", i+1, err)
		}
	}

	tagsForPost, err := svc.TagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("TagsForPost: %v", err)
	}
	if len(tagsForPost) != 1 || tagsForPost[0].ID != tag.ID {
		t.Fatalf("tags for post = %v, want [vegan]", tagsForPost)
	}

	postsForTag, err := svc.PostsForTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("PostsForTag: %v", err)
	}
	if len(postsForTag) != 1 || postsForTag[0].ID != post.ID {
		t.Fatalf("posts for tag = %v, want [dinner]", postsForTag)
	}

	t.Run("missing tag", func(t *testing.T) {
		if err := svc.Associate(ctx, 999, post.ID); !apperror.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
	t.Run("missing post", func(t *testing.T) {
		if err := svc.Associate(ctx, tag.ID, 999); !apperror.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestDeleteTagLeavesPosts(t *testing.T) {
	ctx := context.Background()
	svc, st, user, post := setup(t)
	tag, err := svc.Create(ctx, CreateTagRequest{Name: "vegan", UserID: user.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Associate(ctx, tag.ID, post.ID); err != nil {
		t.Fatalf("Associate: %v", err)
	}

	if err := svc.Delete(ctx, tag.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, tag.ID); !apperror.IsNotFound(err) {
		t.Errorf("tag should be gone, got %v", err)
	}
	if _, err := st.GetPost(ctx, post.ID); err != nil {
		t.Errorf("post must survive tag deletion: %v", err)
	}
}
