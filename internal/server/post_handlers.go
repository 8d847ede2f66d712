package server

import (
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// textRequest is the body of post and comment creation.
type textRequest struct {
	Text string `json:"text"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description All posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body textRequest true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req textRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID: middleware.UserID(c),
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventPostCreated, post)
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Only the author may delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} msgResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	if err := s.postService.Delete(c.UserContext(), postID, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventPostDeleted, fiber.Map{"post_id": postID})
	return c.JSON(msgResponse{Msg: "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	likes, err := s.postService.Like(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventPostLiked, likesPayload(postID, likes))
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	likes, err := s.postService.Unlike(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventPostUnliked, likesPayload(postID, likes))
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comment/:id
// @Summary Comment on post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body textRequest true "Comment"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req textRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	postID := c.Params("id")
	comments, err := s.postService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID: postID,
		UserID: middleware.UserID(c),
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventCommentAdded, commentsPayload(postID, comments))
	return c.JSON(comments)
}

// RemoveComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Remove comment
// @Description The comment's author or the post's author may remove it
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) RemoveComment(c *fiber.Ctx) error {
	postID := c.Params("id")
	comments, err := s.postService.RemoveComment(c.UserContext(), postID, c.Params("comment_id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), EventCommentRemoved, commentsPayload(postID, comments))
	return c.JSON(comments)
}
