// Обработчики блоков: каталог для меню вставки, команды редактора,
// подпись и данные графика.
package redacteur

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	filestorage "github.com/aisa-it/redacteur/internal/redacteur/file-storage"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	errStack "github.com/aisa-it/redacteur/internal/redacteur/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

const signatureContentType = "image/png"

func (s *Services) AddBlockServices(g *echo.Group) {
	g.GET("blocks/", s.getBlockCatalog)

	docGroup := g.Group("docs/:docId/", s.DocMiddleware)
	docGroup.POST("commands/", s.executeCommand)
	docGroup.GET("blocks/:blockId/", s.getBlock)
	docGroup.PUT("blocks/:blockId/chart-data/", s.updateChartData)

	docGroup.GET("blocks/:blockId/signature/", s.getSignatureImage)
	docGroup.POST("blocks/:blockId/signature/", s.signBlock)
	docGroup.POST("blocks/:blockId/signature/upload/", s.uploadSignature)
	docGroup.DELETE("blocks/:blockId/signature/", s.removeSignature)
}

// getBlockCatalog godoc
// @id getBlockCatalog
// @Summary blocks: каталог блоков
// @Description Блоки для меню вставки, сгруппированные по категориям
// @Tags Blocks
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} blocks.Group "каталог"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Router /api/v1/redacteur/blocks/ [get]
func (s *Services) getBlockCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, blocks.Grouped())
}

// executeCommand godoc
// @id executeCommand
// @Summary blocks: команда редактора
// @Description Вставка блока (insertDataFetch, insertChart, ...), изменение (updateBlock),
// @Description удаление (deleteBlock), обновление данных (refreshBlock) и данные графика (editChartData).
// @Tags Blocks
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param data body CommandRequest true "команда"
// @Success 200 {object} dto.Block "затронутый блок"
// @Success 204 "Блок удален"
// @Failure 400 {object} apierrors.DefinedError "Некорректная команда"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Router /api/v1/redacteur/docs/{docId}/commands/ [post]
func (s *Services) executeCommand(c echo.Context) error {
	doc := c.(DocContext).Doc

	var req CommandRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	rt, err := s.runtimes.Get(c.Request().Context(), doc.ID)
	if err != nil {
		return EError(c, err)
	}

	b, err := rt.Execute(req.ToCommand())
	if err != nil {
		return EError(c, err)
	}
	if b == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return respondBlock(c, b)
}

// getBlock godoc
// @id getBlock
// @Summary blocks: получение блока
// @Description Текущие атрибуты блока, включая результаты загрузок
// @Tags Blocks
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Success 200 {object} dto.Block "блок"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/ [get]
func (s *Services) getBlock(c echo.Context) error {
	doc := c.(DocContext).Doc

	rt, err := s.runtimes.Get(c.Request().Context(), doc.ID)
	if err != nil {
		return EError(c, err)
	}
	b, err := rt.Block(c.Param("blockId"))
	if err != nil {
		return EError(c, err)
	}
	return respondBlock(c, b)
}

// updateChartData godoc
// @id updateChartData
// @Summary blocks: данные графика
// @Description Заменяет данные графика строкой JSON с массивом объектов
// @Tags Blocks
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Param data body ChartDataRequest true "данные"
// @Success 200 {object} dto.Block "блок"
// @Failure 400 {object} apierrors.DefinedError "Данные не являются массивом объектов"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/chart-data/ [put]
func (s *Services) updateChartData(c echo.Context) error {
	doc := c.(DocContext).Doc

	var req ChartDataRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	rt, err := s.runtimes.Get(c.Request().Context(), doc.ID)
	if err != nil {
		return EError(c, err)
	}
	b, err := rt.Update(c.Param("blockId"), func(b edtypes.Block) error {
		ch, ok := b.(*edtypes.Chart)
		if !ok {
			return apierrors.ErrBlockTypeMismatch.WithFormattedMessage(edtypes.ChartBlock)
		}
		if !chart.EditData(ch, req.Data) {
			return apierrors.ErrChartDataInvalid
		}
		return nil
	})
	if err != nil {
		return EError(c, err)
	}
	return respondBlock(c, b)
}

// signBlock godoc
// @id signBlock
// @Summary signature: подписать
// @Description Растеризует нарисованные штрихи и сохраняет подпись с временем и IP-адресом
// @Tags Signature
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Param data body SignRequest true "штрихи"
// @Success 200 {object} dto.Block "блок"
// @Failure 400 {object} apierrors.DefinedError "Пустая подпись или слишком длинный штрих"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Failure 409 {object} apierrors.DefinedError "Блок уже подписан"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/signature/ [post]
func (s *Services) signBlock(c echo.Context) error {
	var req SignRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}
	if req.Width == 0 {
		req.Width = signature.DefaultWidth
	}
	if req.Height == 0 {
		req.Height = signature.DefaultHeight
	}

	dataURL, err := signature.Rasterize(req.Strokes, req.Width, req.Height)
	if err != nil {
		return EError(c, err)
	}

	return s.commitSignature(c, func(sig *edtypes.Signature, ip string, now time.Time) error {
		return signature.NewPad(sig, req.Width, req.Height).Upload(sig, dataURL, ip, now)
	})
}

// uploadSignature godoc
// @id uploadSignature
// @Summary signature: загрузить изображение подписи
// @Description Сохраняет подпись из изображения png, jpeg или gif
// @Tags Signature
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Param file formData file true "изображение"
// @Success 200 {object} dto.Block "блок"
// @Failure 400 {object} apierrors.DefinedError "Неподдерживаемое изображение"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Failure 409 {object} apierrors.DefinedError "Блок уже подписан"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/signature/upload/ [post]
func (s *Services) uploadSignature(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrSignatureImage)
	}
	f, err := fh.Open()
	if err != nil {
		return EError(c, err)
	}
	defer f.Close()

	dataURL, err := signature.DecodeUpload(f)
	if err != nil {
		return EError(c, err)
	}

	return s.commitSignature(c, func(sig *edtypes.Signature, ip string, now time.Time) error {
		return signature.NewPad(sig, 0, 0).Upload(sig, dataURL, ip, now)
	})
}

// commitSignature подписывает блок и архивирует изображение в файловом хранилище.
// sign выполняется под блокировкой документа, изображение готовится заранее.
func (s *Services) commitSignature(c echo.Context, sign func(sig *edtypes.Signature, ip string, now time.Time) error) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}

	assetId := dao.GenUUID()
	b, err := rt.Update(c.Param("blockId"), func(b edtypes.Block) error {
		sig, ok := b.(*edtypes.Signature)
		if !ok {
			return apierrors.ErrBlockTypeMismatch.WithFormattedMessage(edtypes.SignatureBlock)
		}
		if err := sign(sig, c.RealIP(), time.Now()); err != nil {
			return err
		}
		sig.AssetId = assetId.String()
		return nil
	})
	if err != nil {
		return EError(c, err)
	}

	if err := s.archiveSignature(ctx, b.(*edtypes.Signature), assetId, doc, user); err != nil {
		errStack.GetError(c, errStack.TrackErrorStack(err).InBlock(doc.ID.String(), b.BlockID(), string(b.BlockType())).AddContext("assetId", assetId.String()))
	}
	return respondBlock(c, b)
}

func (s *Services) archiveSignature(ctx context.Context, sig *edtypes.Signature, assetId uuid.UUID, doc dao.Doc, user *Author) error {
	data, err := signature.DecodeDataURL(sig.Signature)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, data, assetId, signatureContentType, &filestorage.Metadata{
		DocId:   doc.ID.String(),
		BlockId: sig.ID,
	}); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&dao.FileAsset{
		Id:          assetId,
		CreatedById: &user.Id,
		DocId:       doc.ID,
		BlockId:     sig.ID,
		Name:        "signature-" + sig.ID + ".png",
		FileSize:    len(data),
		ContentType: signatureContentType,
	}).Error
}

// removeSignature godoc
// @id removeSignature
// @Summary signature: удалить подпись
// @Description Сбрасывает подпись блока и удаляет архивное изображение
// @Tags Signature
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Success 200 {object} dto.Block "блок"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Документ или блок не найден"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/signature/ [delete]
func (s *Services) removeSignature(c echo.Context) error {
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}

	var assetId string
	b, err := rt.Update(c.Param("blockId"), func(b edtypes.Block) error {
		sig, ok := b.(*edtypes.Signature)
		if !ok {
			return apierrors.ErrBlockTypeMismatch.WithFormattedMessage(edtypes.SignatureBlock)
		}
		assetId = sig.AssetId
		signature.Remove(sig)
		return nil
	})
	if err != nil {
		return EError(c, err)
	}

	if id, err := uuid.FromString(assetId); err == nil {
		if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&dao.FileAsset{}).Error; err != nil {
			errStack.GetError(c, err)
		}
		s.deleteAssets(c, []dao.FileAsset{{Id: id}})
	}
	return respondBlock(c, b)
}

// getSignatureImage godoc
// @id getSignatureImage
// @Summary signature: изображение подписи
// @Description Архивное PNG изображение подписи из файлового хранилища
// @Tags Signature
// @Security ApiKeyAuth
// @Produce png
// @Param docId path string true "Id документа"
// @Param blockId path string true "Id блока"
// @Success 200 {file} binary "изображение"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Failure 404 {object} apierrors.DefinedError "Блок или файл не найден"
// @Router /api/v1/redacteur/docs/{docId}/blocks/{blockId}/signature/ [get]
func (s *Services) getSignatureImage(c echo.Context) error {
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	rt, err := s.runtimes.Get(ctx, doc.ID)
	if err != nil {
		return EError(c, err)
	}
	b, err := rt.Block(c.Param("blockId"))
	if err != nil {
		return EError(c, err)
	}
	sig, ok := b.(*edtypes.Signature)
	if !ok {
		return EErrorDefined(c, apierrors.ErrBlockTypeMismatch.WithFormattedMessage(edtypes.SignatureBlock))
	}
	assetId, err := uuid.FromString(sig.AssetId)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrFileNotFound)
	}

	r, err := s.storage.LoadReader(ctx, assetId)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			return EErrorDefined(c, apierrors.ErrFileNotFound)
		}
		return EError(c, err)
	}
	defer r.Close()
	return c.Stream(http.StatusOK, signatureContentType, r)
}

func respondBlock(c echo.Context, b edtypes.Block) error {
	attrs, err := tiptap.BlockAttrs(b)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Block{Id: b.BlockID(), Type: b.BlockType(), Attrs: attrs})
}
