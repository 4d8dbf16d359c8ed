package service

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/fahim/linkup/internal/apperror"
	"github.com/fahim/linkup/internal/model"
	"github.com/fahim/linkup/internal/store"
)

const (
	MaxPostTextLength    = 4000
	MaxCommentTextLength = 1000
)

// FeedService manages the public post feed. Posts carry a denormalized
// author snapshot captured at creation time; likes toggle, comments append,
// nothing is ever deleted.
type FeedService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewFeedService(st *store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{store: st, logger: logger}
}

// ListPosts returns all posts, newest first. Equal timestamps keep their
// insertion order.
func (s *FeedService) ListPosts(actorID string) ([]model.Post, error) {
	posts := []model.Post{}
	err := s.store.View(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}
		posts = append(posts, snap.Posts...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// CreatePost appends a new post. At least one of text and image is required.
func (s *FeedService) CreatePost(actorID, text, image string) (model.Post, error) {
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if text == "" && image == "" {
		return model.Post{}, apperror.ValidationFailed("text", "a post needs text or an image")
	}
	if len(text) > MaxPostTextLength {
		return model.Post{}, apperror.ValidationFailed("text",
			fmt.Sprintf("post text must be %d characters or less", MaxPostTextLength))
	}

	var post model.Post
	err := s.store.Update(func(snap *store.Snapshot) error {
		author, ok := snap.Users[actorID]
		if !ok {
			return apperror.Unauthenticated("unknown identity")
		}

		post = model.Post{
			ID:             xid.New().String(),
			AuthorSnapshot: model.SnapshotOf(author),
			Text:           text,
			Image:          image,
			CreatedAt:      time.Now(),
			Likes:          []string{},
			Comments:       []model.Comment{},
		}
		snap.Posts = append(snap.Posts, post)
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("author", actorID),
	)
	return post, nil
}

// ToggleLike adds the actor to the post's like set, or removes them if
// already present, and returns the resulting set.
func (s *FeedService) ToggleLike(actorID, postID string) ([]string, error) {
	var likes []string
	err := s.store.Update(func(snap *store.Snapshot) error {
		if _, ok := snap.Users[actorID]; !ok {
			return apperror.Unauthenticated("unknown identity")
		}

		i := findPost(snap, postID)
		if i < 0 {
			return apperror.NotFound("post", postID)
		}

		post := snap.Posts[i]
		if post.Liked(actorID) {
			post.Likes = model.Remove(post.Likes, actorID)
		} else {
			post.Likes = append(post.Likes, actorID)
		}
		snap.Posts[i] = post
		likes = append([]string{}, post.Likes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("like toggled",
		slog.String("post", postID),
		slog.String("actor", actorID),
	)
	return likes, nil
}

// AddComment appends a comment to the post, denormalizing the actor's
// display fields at append time.
func (s *FeedService) AddComment(actorID, postID, text string) (model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxCommentTextLength {
		return model.Comment{}, apperror.ValidationFailed("text",
			fmt.Sprintf("comment text must be %d characters or less", MaxCommentTextLength))
	}

	var comment model.Comment
	err := s.store.Update(func(snap *store.Snapshot) error {
		author, ok := snap.Users[actorID]
		if !ok {
			return apperror.Unauthenticated("unknown identity")
		}

		i := findPost(snap, postID)
		if i < 0 {
			return apperror.NotFound("post", postID)
		}

		comment = model.Comment{
			ID:             xid.New().String(),
			AuthorSnapshot: model.SnapshotOf(author),
			Text:           text,
			CreatedAt:      time.Now(),
		}
		snap.Posts[i].Comments = append(snap.Posts[i].Comments, comment)
		return nil
	})
	if err != nil {
		return model.Comment{}, err
	}

	s.logger.Info("comment added",
		slog.String("post", postID),
		slog.String("author", actorID),
	)
	return comment, nil
}

func findPost(snap *store.Snapshot, postID string) int {
	for i := range snap.Posts {
		if snap.Posts[i].ID == postID {
			return i
		}
	}
	return -1
}
