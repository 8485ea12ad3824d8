package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/activity"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments and comment likes
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	commentLikeRepository repositories.CommentLikeRepository
	dreamRepository       repositories.DreamRepository
	userRepository        repositories.UserRepository
	followRepository      repositories.FollowRepository
	recorder              *activity.Recorder
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, likeRepo repositories.CommentLikeRepository, dreamRepo repositories.DreamRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository, recorder *activity.Recorder) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		commentLikeRepository: likeRepo,
		dreamRepository:       dreamRepo,
		userRepository:        userRepo,
		followRepository:      followRepo,
		recorder:              recorder,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/dreams/:id/comments", h.GetCommentsForDream)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.LikeComment)
	g.DELETE("/comments/:id/like", h.UnlikeComment)
}

// CreateComment creates a comment on a dream and notifies the dream owner
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), req.DreamID)
	if err != nil {
		return mapDreamRepoError(err)
	}
	if err := requireDreamVisible(dream, user.FirebaseUID, h.userRepository, h.followRepository); err != nil {
		return err
	}

	comment := &models.Comment{
		DreamID: req.DreamID,
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.recordEvent(c, activity.Event{
		Type:       models.EventComment,
		ActorUID:   user.FirebaseUID,
		ActorName:  user.Name,
		DreamID:    req.DreamID,
		DreamTitle: dream.Title,
		CommentID:  comment.ID,
	}, dream.UserID)

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsForDream retrieves all comments for a dream the caller may see
func (h *CommentHandler) GetCommentsForDream(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDreamRepoError(err)
	}
	if err := requireDreamVisible(dream, viewerUID, h.userRepository, h.followRepository); err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByDreamID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// UpdateComment updates a comment owned by the authenticated user
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentByParam(c)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own comments")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment owned by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comment, err := h.commentByParam(c)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// LikeComment likes a comment and notifies the comment author
func (h *CommentHandler) LikeComment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	comment, err := h.commentByParam(c)
	if err != nil {
		return err
	}

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), comment.DreamID)
	if err != nil {
		return mapDreamRepoError(err)
	}
	if err := requireDreamVisible(dream, user.FirebaseUID, h.userRepository, h.followRepository); err != nil {
		return err
	}

	liked, err := h.commentLikeRepository.HasUserLikedComment(comment.ID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Comment already liked")
	}

	like := &models.CommentLike{CommentID: comment.ID, UserID: user.ID}
	if err := h.commentLikeRepository.CreateCommentLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if author, err := h.userRepository.GetUserByID(comment.UserID); err == nil {
		h.recordEvent(c, activity.Event{
			Type:       models.EventCommentReaction,
			ActorUID:   user.FirebaseUID,
			ActorName:  user.Name,
			DreamID:    comment.DreamID,
			DreamTitle: dream.Title,
			CommentID:  comment.ID,
		}, author.FirebaseUID)
	}

	count, _ := h.commentLikeRepository.GetLikesCountByCommentID(comment.ID)
	return c.JSON(http.StatusCreated, echo.Map{"comment_id": comment.ID, "likes": count})
}

// UnlikeComment removes the caller's like from a comment
func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comment, err := h.commentByParam(c)
	if err != nil {
		return err
	}

	if err := h.commentLikeRepository.DeleteCommentLike(comment.ID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	count, _ := h.commentLikeRepository.GetLikesCountByCommentID(comment.ID)
	return c.JSON(http.StatusOK, echo.Map{"comment_id": comment.ID, "likes": count})
}

func (h *CommentHandler) commentByParam(c echo.Context) (*models.Comment, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}
	comment, err := h.commentRepository.GetCommentByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return comment, nil
}

func (h *CommentHandler) currentUser(c echo.Context) (*models.User, error) {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

// recordEvent fans the event out to the recipient's inbox; delivery is best
// effort relative to the committed write that triggered it.
func (h *CommentHandler) recordEvent(c echo.Context, event activity.Event, recipientUID string) {
	if _, err := h.recorder.RecordEvent(c.Request().Context(), recipientUID, event); err != nil {
		log.Printf("Failed to record %s event for dream %s: %v", event.Type, event.DreamID, err)
	}
}
