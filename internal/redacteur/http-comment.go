// Обработчики комментариев к фрагментам документа.
package redacteur

import (
	"net/http"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	"github.com/aisa-it/redacteur/internal/redacteur/comments"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/notifications"
	policy "github.com/aisa-it/redacteur/internal/redacteur/redactor-policy"
	errStack "github.com/aisa-it/redacteur/internal/redacteur/stack-error"
	"github.com/aisa-it/redacteur/internal/redacteur/utils"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Services) AddCommentServices(g *echo.Group) {
	docGroup := g.Group("docs/:docId/", s.DocMiddleware)

	docGroup.GET("comments/", s.getCommentList)
	docGroup.POST("comments/", s.createComment)
	docGroup.GET("comments/decorations/", s.getCommentDecorations)
	docGroup.POST("comments/:commentId/replies/", s.replyComment)
	docGroup.POST("comments/:commentId/resolve/", s.resolveComment)
	docGroup.POST("comments/:commentId/reopen/", s.reopenComment)
	docGroup.DELETE("comments/:commentId/", s.deleteComment)
}

// getCommentList godoc
// @id getCommentList
// @Summary comments: боковая панель
// @Description Ветки комментариев документа. Решенные ветки скрыты, если show_resolved не задан.
// @Tags Comments
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param show_resolved query bool false "Показывать решенные ветки"
// @Success 200 {array} dto.CommentThread "ветки"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/ [get]
func (s *Services) getCommentList(c echo.Context) error {
	doc := c.(DocContext).Doc

	showResolved := false
	if err := echo.QueryParamsBinder(c).
		Bool("show_resolved", &showResolved).
		BindError(); err != nil {
		return EError(c, err)
	}

	list, err := s.comments.List(c.Request().Context(), doc.ID)
	if err != nil {
		return EError(c, err)
	}
	threads := comments.Panel(list, showResolved)

	return c.JSON(http.StatusOK,
		utils.SliceToSlice(&threads, func(t *comments.Thread) dto.CommentThread { return t.ToDTO() }))
}

// createComment godoc
// @id createComment
// @Summary comments: новый комментарий
// @Description Комментирует выделенный фрагмент: фрагмент получает отметку comment
// @Tags Comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param data body CommentRequest true "комментарий"
// @Success 200 {object} dto.Comment "комментарий"
// @Failure 400 {object} apierrors.DefinedError "Пустой комментарий или неверное выделение"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/ [post]
func (s *Services) createComment(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}
	content, err := rt.Snapshot()
	if err != nil {
		return EError(c, err)
	}

	var comment dao.Comment
	req.Bind(&comment, doc.ID, user)
	comment.Text = policy.SanitizeComment(comment.Text)
	if comment.Quote, err = comments.Quote(content, req.Selection); err != nil {
		return EError(c, err)
	}

	if err := s.comments.Create(ctx, &comment); err != nil {
		return EError(c, err)
	}

	if err := rt.Mutate(func(d *edtypes.Document) error {
		return comments.Attach(d, req.Selection, comment.Id.String())
	}); err != nil {
		if _, delErr := s.comments.Delete(ctx, comment.Id); delErr != nil {
			errStack.GetError(c, delErr)
		}
		return EError(c, err)
	}

	return s.respondComment(c, comment)
}

// replyComment godoc
// @id replyComment
// @Summary comments: ответ
// @Description Добавляет ответ в ветку. Ответ на ответ попадает в корень ветки.
// @Tags Comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param commentId path string true "Id комментария"
// @Param data body ReplyRequest true "ответ"
// @Success 200 {object} dto.Comment "ответ"
// @Failure 400 {object} apierrors.DefinedError "Пустой ответ"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Комментарий не найден"
// @Failure 409 {object} apierrors.DefinedError "Ветка решена"
// @Router /api/v1/redacteur/docs/{docId}/comments/{commentId}/replies/ [post]
func (s *Services) replyComment(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc

	parent, err := s.docComment(c)
	if err != nil {
		return EError(c, err)
	}

	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	var reply dao.Comment
	(&CommentRequest{Text: req.Text}).Bind(&reply, doc.ID, user)
	reply.Text = policy.SanitizeComment(reply.Text)

	if err := s.comments.Reply(c.Request().Context(), parent.Id, &reply); err != nil {
		return EError(c, err)
	}

	return s.respondComment(c, reply)
}

// resolveComment godoc
// @id resolveComment
// @Summary comments: решить ветку
// @Description Помечает ветку решенной, подсветка фрагмента меняется на comment-resolved
// @Tags Comments
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param commentId path string true "Id комментария"
// @Success 200 {object} dto.Comment "корневой комментарий"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Комментарий не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/{commentId}/resolve/ [post]
func (s *Services) resolveComment(c echo.Context) error {
	user := c.(DocContext).User

	comment, err := s.docComment(c)
	if err != nil {
		return EError(c, err)
	}

	root, err := s.comments.Resolve(c.Request().Context(), comment.Id, user.Id)
	if err != nil {
		return EError(c, err)
	}
	return s.respondComment(c, root)
}

// reopenComment godoc
// @id reopenComment
// @Summary comments: открыть ветку заново
// @Tags Comments
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param commentId path string true "Id комментария"
// @Success 200 {object} dto.Comment "корневой комментарий"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Комментарий не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/{commentId}/reopen/ [post]
func (s *Services) reopenComment(c echo.Context) error {
	comment, err := s.docComment(c)
	if err != nil {
		return EError(c, err)
	}

	root, err := s.comments.Reopen(c.Request().Context(), comment.Id)
	if err != nil {
		return EError(c, err)
	}
	return s.respondComment(c, root)
}

// deleteComment godoc
// @id deleteComment
// @Summary comments: удаление
// @Description Удаляет комментарий с ответами. Для корневого комментария снимается отметка в документе.
// @Description Удалить комментарий может только автор.
// @Tags Comments
// @Security ApiKeyAuth
// @Param docId path string true "Id документа"
// @Param commentId path string true "Id комментария"
// @Success 200 "Комментарий удален"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 403 {object} apierrors.DefinedError "Удалить комментарий может только автор"
// @Failure 404 {object} apierrors.DefinedError "Комментарий не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/{commentId}/ [delete]
func (s *Services) deleteComment(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	comment, err := s.docComment(c)
	if err != nil {
		return EError(c, err)
	}
	if comment.AuthorId != user.Id {
		return EErrorDefined(c, apierrors.ErrCommentEditForbidden)
	}

	if _, err := s.comments.Delete(ctx, comment.Id); err != nil {
		return EError(c, err)
	}

	if !comment.ParentId.Valid {
		rt, err := s.runtimes.Get(ctx, doc.ID)
		if err != nil {
			return EError(c, err)
		}
		if err := rt.Mutate(func(d *edtypes.Document) error {
			comments.Detach(d, comment.Id.String())
			return nil
		}); err != nil {
			return EError(c, err)
		}
	}

	s.stream.Send(notifications.Message{
		Type:      notifications.MsgComment,
		DocId:     doc.ID.String(),
		Data:      map[string]any{"id": comment.Id.String(), "deleted": true},
		CreatedAt: time.Now(),
	})
	return c.NoContent(http.StatusOK)
}

// getCommentDecorations godoc
// @id getCommentDecorations
// @Summary comments: подсветка фрагментов
// @Description Диапазоны фрагментов с комментариями. comment_id оставляет диапазоны одного комментария.
// @Tags Comments
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param comment_id query string false "Id комментария"
// @Success 200 {array} comments.Decoration "диапазоны"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/comments/decorations/ [get]
func (s *Services) getCommentDecorations(c echo.Context) error {
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	commentId := c.QueryParam("comment_id")

	content, err := s.snapshot(ctx, doc)
	if err != nil {
		return EError(c, err)
	}
	resolved, err := s.comments.Resolved(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}

	decorations := comments.Decorations(content, resolved)
	if commentId != "" {
		decorations = utils.Collect(utils.Filter(utils.All(decorations), func(d comments.Decoration) bool {
			return d.CommentId == commentId
		}))
	}
	if decorations == nil {
		decorations = make([]comments.Decoration, 0)
	}
	return c.JSON(http.StatusOK, decorations)
}

// docComment загружает комментарий из пути запроса и проверяет, что он относится к документу.
func (s *Services) docComment(c echo.Context) (dao.Comment, error) {
	doc := c.(DocContext).Doc

	id, err := uuid.FromString(c.Param("commentId"))
	if err != nil {
		return dao.Comment{}, apierrors.ErrInvalidID
	}
	comment, err := s.comments.Get(c.Request().Context(), id)
	if err != nil {
		return comment, err
	}
	if comment.DocId != doc.ID {
		return comment, comments.ErrNotFound
	}
	return comment, nil
}

// respondComment рассылает комментарий клиентам документа и возвращает его.
func (s *Services) respondComment(c echo.Context, comment dao.Comment) error {
	res := comment.ToDTO()
	s.stream.Send(notifications.Message{
		Type:      notifications.MsgComment,
		DocId:     comment.DocId.String(),
		Data:      res,
		CreatedAt: time.Now(),
	})
	return c.JSON(http.StatusOK, res)
}
