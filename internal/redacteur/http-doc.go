// Обработчики документов: список, создание, чтение, изменение, удаление,
// выгрузка и поток изменений по вебсокету.
package redacteur

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/export"
	filestorage "github.com/aisa-it/redacteur/internal/redacteur/file-storage"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	errStack "github.com/aisa-it/redacteur/internal/redacteur/stack-error"
	"github.com/aisa-it/redacteur/internal/redacteur/utils"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	defaultDocLimit = 20
	maxDocLimit     = 100
)

func (s *Services) AddDocServices(g *echo.Group) {
	g.GET("docs/", s.getDocList)
	g.POST("docs/", s.createDoc)

	// Метаданные для блоков reference других документов
	g.GET("documents/:docId/", s.getDocMetadata, s.DocMiddleware)

	docGroup := g.Group("docs/:docId/", s.DocMiddleware)
	docGroup.GET("", s.getDoc)
	docGroup.PATCH("", s.updateDoc)
	docGroup.DELETE("", s.deleteDoc)
	docGroup.GET("export/", s.exportDoc)
	docGroup.GET("ws/", s.docStream)
}

// getDocList godoc
// @id getDocList
// @Summary doc: список документов
// @Description Возвращает страницу документов, новые первыми. search фильтрует по заголовку.
// @Tags Docs
// @Security ApiKeyAuth
// @Produce json
// @Param offset query int false "Смещение"
// @Param limit query int false "Размер страницы, не больше 100"
// @Param search query string false "Строка поиска по заголовку"
// @Success 200 {object} dao.PaginationResponse{result=[]dto.DocLight} "документы"
// @Failure 400 {object} apierrors.DefinedError "Некорректные параметры запроса"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Router /api/v1/redacteur/docs/ [get]
func (s *Services) getDocList(c echo.Context) error {
	offset := 0
	limit := defaultDocLimit
	search := ""

	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		String("search", &search).
		BindError(); err != nil {
		return EError(c, err)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxDocLimit {
		limit = maxDocLimit
	}

	query := s.db.Select("id", "created_at", "created_by_id", "author_name", "updated_at", "title", "excerpt").
		Order("created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("lower(title) like ?", "%"+strings.ToLower(search)+"%")
	}

	var docs []dao.Doc
	resp, err := dao.PaginationRequest(offset, limit, query, &docs)
	if err != nil {
		return EError(c, err)
	}
	resp.Result = utils.SliceToSlice(&docs, func(d *dao.Doc) dto.DocLight { return *d.ToLightDTO() })

	return c.JSON(http.StatusOK, resp)
}

// createDoc godoc
// @id createDoc
// @Summary doc: создание документа
// @Description Создает документ из TipTap JSON или HTML редактора. Производные атрибуты блоков
// @Description (результаты формул, данные, подписи) из запроса не принимаются.
// @Tags Docs
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param data body CreateDocRequest true "документ"
// @Success 200 {object} dto.Doc "документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректные параметры запроса"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 413 {object} apierrors.DefinedError "Слишком большой документ"
// @Router /api/v1/redacteur/docs/ [post]
func (s *Services) createDoc(c echo.Context) error {
	user := c.(AuthContext).User

	var req CreateDocRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	var doc dao.Doc
	if err := req.Bind(&doc, user); err != nil {
		return EError(c, err)
	}

	if err := s.db.Create(&doc).Error; err != nil {
		return EError(c, err)
	}

	return s.respondDoc(c, doc)
}

// getDoc godoc
// @id getDoc
// @Summary doc: получение документа
// @Description Возвращает документ с текущими результатами блоков и предупреждениями
// @Tags Docs
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Success 200 {object} dto.Doc "документ"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/ [get]
func (s *Services) getDoc(c echo.Context) error {
	return s.respondDoc(c, c.(DocContext).Doc)
}

// updateDoc godoc
// @id updateDoc
// @Summary doc: изменение документа
// @Description Изменяет заголовок и/или содержимое. Производные атрибуты существующих блоков
// @Description сохраняются, у новых блоков вычисляются заново.
// @Tags Docs
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param data body UpdateDocRequest true "изменения"
// @Success 200 {object} dto.Doc "документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректные параметры запроса"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/ [patch]
func (s *Services) updateDoc(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc

	var req UpdateDocRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	fields := map[string]any{
		"updated_by_id": user.Id,
		"updated_at":    time.Now(),
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
		fields["title"] = doc.Title
	}

	if !req.Content.empty() {
		content, err := req.Document()
		if err != nil {
			return EError(c, err)
		}
		rt, err := s.runtimes.Get(c.Request().Context(), doc.ID)
		if err != nil {
			return EError(c, err)
		}
		// Содержимое сохраняет обработчик изменений runtime
		if err := rt.Replace(content); err != nil {
			return EError(c, err)
		}
	}

	if err := s.db.Model(&dao.Doc{}).Where("id = ?", doc.ID).Updates(fields).Error; err != nil {
		return EError(c, err)
	}
	doc.UpdatedById = &user.Id

	return s.respondDoc(c, doc)
}

// deleteDoc godoc
// @id deleteDoc
// @Summary doc: удаление документа
// @Description Удаляет документ вместе с комментариями и файлами подписей. Доступно только автору.
// @Tags Docs
// @Security ApiKeyAuth
// @Param docId path string true "Id документа"
// @Success 200 "Документ удален"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 403 {object} apierrors.DefinedError "Удалить документ может только автор"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/ [delete]
func (s *Services) deleteDoc(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc

	if doc.CreatedById != user.Id {
		return EErrorDefined(c, apierrors.ErrDocUpdateForbidden)
	}

	s.runtimes.CloseDoc(doc.ID)

	var assets []dao.FileAsset
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", doc.ID).Find(&assets).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id = ?", doc.ID).Delete(&dao.FileAsset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id = ? AND parent_id IS NOT NULL", doc.ID).Delete(&dao.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id = ?", doc.ID).Delete(&dao.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	}); err != nil {
		return EError(c, err)
	}

	s.stream.CloseDoc(doc.ID.String())
	s.deleteAssets(c, assets)

	return c.NoContent(http.StatusOK)
}

// deleteAssets удаляет файлы из хранилища. Ошибки только пишутся в лог:
// записи о файлах уже удалены.
func (s *Services) deleteAssets(c echo.Context, assets []dao.FileAsset) {
	for _, asset := range assets {
		if err := s.storage.Delete(c.Request().Context(), asset.Id); err != nil && !errors.Is(err, filestorage.ErrNotFound) {
			errStack.GetError(c, errStack.TrackErrorStack(err).AddContext("assetId", asset.Id.String()))
		}
	}
}

// getDocMetadata godoc
// @id getDocMetadata
// @Summary doc: метаданные документа
// @Description Метаданные документа в формате, который загружает блок reference
// @Tags Docs
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Success 200 {object} dto.DocMetadata "метаданные"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/documents/{docId}/ [get]
func (s *Services) getDocMetadata(c echo.Context) error {
	doc := c.(DocContext).Doc
	return c.JSON(http.StatusOK, doc.ToMetadataDTO())
}

// exportDoc godoc
// @id exportDoc
// @Summary doc: выгрузка документа
// @Description Выгружает документ в html, json, md или pdf. Системные переменные подставляются.
// @Tags Docs
// @Security ApiKeyAuth
// @Produce octet-stream
// @Param docId path string true "Id документа"
// @Param format query string false "html (по умолчанию), json, md, pdf"
// @Param minify query bool false "Минифицировать HTML"
// @Param editable query bool false "Сохранить в HTML атрибуты блоков"
// @Success 200 {file} binary "файл документа"
// @Failure 400 {object} apierrors.DefinedError "Неизвестный формат"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Failure 500 {object} apierrors.DefinedError "Ошибка выгрузки"
// @Router /api/v1/redacteur/docs/{docId}/export/ [get]
func (s *Services) exportDoc(c echo.Context) error {
	doc := c.(DocContext).Doc

	format := "html"
	minify := false
	editable := false
	if err := echo.QueryParamsBinder(c).
		String("format", &format).
		Bool("minify", &minify).
		Bool("editable", &editable).
		BindError(); err != nil {
		return EError(c, err)
	}
	format = strings.ToLower(strings.TrimSpace(format))

	ctx := c.Request().Context()
	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}

	if format == "json" {
		content, err := rt.Content()
		if err != nil {
			return EError(c, err)
		}
		setAttachment(c, doc.Title, "json")
		return c.JSONBlob(http.StatusOK, content)
	}

	content, err := rt.Snapshot()
	if err != nil {
		return EError(c, err)
	}
	resolved, err := s.comments.Resolved(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}
	meta := export.Meta{
		Title:  doc.Title,
		Author: doc.AuthorName,
		Date:   time.Now(),
		Locale: cfg.Locale,
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "html":
		contentType = echo.MIMETextHTMLCharsetUTF8
		err = export.HTML(content, meta, &buf, export.HTMLOptions{Minify: minify, Editable: editable, Resolved: resolved})
	case "md":
		contentType = "text/markdown; charset=UTF-8"
		err = export.Markdown(content, meta, &buf)
	case "pdf":
		contentType = "application/pdf"
		err = export.PDF(content, meta, &buf, export.PDFOptions{Client: s.fetcher.Client(), BaseURL: cfg.WebURL})
	default:
		return EError(c, formatError(format))
	}
	if err != nil {
		errStack.GetError(c, errStack.TrackErrorStack(err).AddContext("format", format))
		return EErrorDefined(c, apierrors.ErrExportFailed)
	}

	setAttachment(c, doc.Title, format)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func setAttachment(c echo.Context, title, ext string) {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "document"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": name + "." + ext}))
}

// docStream godoc
// @id docStream
// @Summary doc: поток изменений документа
// @Description Вебсокет с сообщениями block, blockRemoved, document и comment.
// @Description Токен можно передать подпротоколом "Bearer, <token>".
// @Tags Docs
// @Security ApiKeyAuth
// @Param docId path string true "Id документа"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/v1/redacteur/docs/{docId}/ws/ [get]
func (s *Services) docStream(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc

	// Изменения рассылает runtime, открываем его до подписки
	if _, err := s.runtimes.Get(c.Request().Context(), doc.ID); err != nil {
		return EError(c, err)
	}

	var origins []string
	if cfg.WebURL != nil && cfg.WebURL.Host != "" {
		origins = append(origins, cfg.WebURL.Host)
	}
	s.stream.Handle(doc.ID.String(), user.Id, c.Response(), c.Request(), origins...)
	return nil
}

// respondDoc отдает документ с содержимым из runtime. Открытие runtime
// пересчитывает формулы без результата и запускает загрузки.
func (s *Services) respondDoc(c echo.Context, doc dao.Doc) error {
	content, err := s.snapshot(c.Request().Context(), doc)
	if err != nil {
		return EError(c, err)
	}
	doc.Content = *content

	res := doc.ToDTO()
	res.Warnings = blockWarnings(content)
	return c.JSON(http.StatusOK, res)
}

func (s *Services) snapshot(ctx context.Context, doc dao.Doc) (*edtypes.Document, error) {
	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return rt.Snapshot()
}

func blockWarnings(doc *edtypes.Document) []dto.BlockWarning {
	res := make([]dto.BlockWarning, 0)
	for _, b := range doc.Blocks() {
		sig, ok := b.(*edtypes.Signature)
		if !ok {
			continue
		}
		if msg := signature.Warning(sig); msg != "" {
			res = append(res, dto.BlockWarning{BlockId: sig.ID, BlockType: sig.BlockType(), Message: msg})
		}
	}
	return res
}
