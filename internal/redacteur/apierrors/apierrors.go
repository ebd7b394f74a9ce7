// Пакет содержит определения ошибок API rédacteur. Каждая ошибка имеет код,
// статус HTTP и сообщения на английском и французском языках.
//
// Коды сгруппированы по тысячам:
//   - 1*** общие ошибки и авторизация;
//   - 2*** документы;
//   - 3*** пользовательские блоки;
//   - 4*** формулы;
//   - 5*** комментарии;
//   - 6*** подписи и файловое хранилище.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	FrErr      string `json:"fr_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - generic and auth errors
	ErrGeneric             = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "bad request", FrErr: "Requête invalide"}
	ErrAccessTokenRequired = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "access token is required", FrErr: "Jeton d'accès requis"}
	ErrTokenInvalid        = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "invalid token", FrErr: "Jeton invalide"}
	ErrTokenExpired        = DefinedError{Code: 1004, StatusCode: http.StatusUnauthorized, Err: "token expired", FrErr: "Le jeton a expiré"}
	ErrInvalidID           = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "invalid ID", FrErr: "Identifiant invalide"}
	ErrEntityToLarge       = DefinedError{Code: 1006, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", FrErr: "Requête trop volumineuse"}
	ErrValidation          = DefinedError{Code: 1007, StatusCode: http.StatusBadRequest, Err: "validation failed: %s", FrErr: "Données invalides : %s"}
	ErrNotEnoughRights     = DefinedError{Code: 1008, StatusCode: http.StatusForbidden, Err: "not enough rights", FrErr: "Droits insuffisants"}
	ErrServiceClosed       = DefinedError{Code: 1009, StatusCode: http.StatusServiceUnavailable, Err: "service is shutting down", FrErr: "Le service est en cours d'arrêt"}

	// 2*** - document errors
	ErrDocNotFound          = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "document not found", FrErr: "Document introuvable"}
	ErrDocTitleRequired     = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "document title is required", FrErr: "Le titre du document est obligatoire"}
	ErrDocContentInvalid    = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "invalid document content", FrErr: "Contenu du document invalide"}
	ErrExportFormatUnknown  = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "unknown export format %s", FrErr: "Format d'export inconnu : %s"}
	ErrExportFailed         = DefinedError{Code: 2005, StatusCode: http.StatusInternalServerError, Err: "document export failed", FrErr: "L'export du document a échoué"}
	ErrDocUpdateForbidden   = DefinedError{Code: 2006, StatusCode: http.StatusForbidden, Err: "only the author can delete the document", FrErr: "Seul l'auteur peut supprimer le document"}
	ErrDocHTMLInvalid       = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "invalid document html", FrErr: "HTML du document invalide"}
	ErrDocContentTooLarge   = DefinedError{Code: 2008, StatusCode: http.StatusRequestEntityTooLarge, Err: "document content too large", FrErr: "Contenu du document trop volumineux"}
	ErrDocStreamUnavailable = DefinedError{Code: 2009, StatusCode: http.StatusServiceUnavailable, Err: "document stream unavailable", FrErr: "Flux du document indisponible"}

	// 3*** - block errors
	ErrBlockNotFound      = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "block not found", FrErr: "Bloc introuvable"}
	ErrBlockTypeUnknown   = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "unknown block type %s", FrErr: "Type de bloc inconnu : %s"}
	ErrBlockAttrsInvalid  = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "invalid block attributes: %s", FrErr: "Attributs du bloc invalides : %s"}
	ErrBlockNotRefresh    = DefinedError{Code: 3004, StatusCode: http.StatusBadRequest, Err: "block cannot be refreshed", FrErr: "Ce bloc ne peut pas être actualisé"}
	ErrCommandUnknown     = DefinedError{Code: 3005, StatusCode: http.StatusBadRequest, Err: "unknown command %s", FrErr: "Commande inconnue : %s"}
	ErrBlockPosition      = DefinedError{Code: 3006, StatusCode: http.StatusBadRequest, Err: "invalid insert position", FrErr: "Position d'insertion invalide"}
	ErrChartDataInvalid   = DefinedError{Code: 3007, StatusCode: http.StatusBadRequest, Err: "chart data must be a JSON array of objects", FrErr: "Les données du graphique doivent être un tableau JSON d'objets"}
	ErrBlockTypeMismatch  = DefinedError{Code: 3008, StatusCode: http.StatusBadRequest, Err: "block is not a %s", FrErr: "Le bloc n'est pas de type %s"}
	ErrReferenceNotFound  = DefinedError{Code: 3009, StatusCode: http.StatusNotFound, Err: "referenced item not found", FrErr: "Élément référencé introuvable"}
	ErrBackendUnavailable = DefinedError{Code: 3010, StatusCode: http.StatusBadGateway, Err: "backend unavailable", FrErr: "Service de données indisponible"}

	// 4*** - formula errors
	ErrFormulaForbiddenChars = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "formula contains forbidden characters", FrErr: "Formule invalide : caractères non autorisés"}
	ErrFormulaEvaluation     = DefinedError{Code: 4002, StatusCode: http.StatusBadRequest, Err: "formula evaluation error", FrErr: "Erreur d'évaluation de la formule"}
	ErrFormulaNotFinite      = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "formula result is not a finite number", FrErr: "Erreur d'évaluation de la formule"}

	// 5*** - comment errors
	ErrCommentNotFound      = DefinedError{Code: 5001, StatusCode: http.StatusNotFound, Err: "comment not found", FrErr: "Commentaire introuvable"}
	ErrCommentEmpty         = DefinedError{Code: 5002, StatusCode: http.StatusBadRequest, Err: "comment text is empty", FrErr: "Le commentaire est vide"}
	ErrCommentSelection     = DefinedError{Code: 5003, StatusCode: http.StatusBadRequest, Err: "invalid text selection", FrErr: "Sélection de texte invalide"}
	ErrCommentResolved      = DefinedError{Code: 5004, StatusCode: http.StatusConflict, Err: "thread is resolved", FrErr: "La discussion est résolue"}
	ErrCommentEditForbidden = DefinedError{Code: 5005, StatusCode: http.StatusForbidden, Err: "only the author can delete the comment", FrErr: "Seul l'auteur peut supprimer le commentaire"}

	// 6*** - signature and storage errors
	ErrSignatureEmpty       = DefinedError{Code: 6001, StatusCode: http.StatusBadRequest, Err: "signature is empty", FrErr: "La signature est vide"}
	ErrSignatureImage       = DefinedError{Code: 6002, StatusCode: http.StatusBadRequest, Err: "unsupported signature image", FrErr: "Image de signature non prise en charge"}
	ErrFileNotFound         = DefinedError{Code: 6003, StatusCode: http.StatusNotFound, Err: "file not found", FrErr: "Fichier introuvable"}
	ErrFileStorage          = DefinedError{Code: 6004, StatusCode: http.StatusInternalServerError, Err: "file storage error", FrErr: "Erreur de stockage du fichier"}
	ErrSignatureAlreadySign = DefinedError{Code: 6005, StatusCode: http.StatusConflict, Err: "block is already signed", FrErr: "Le bloc est déjà signé"}
	ErrSignatureTooLong     = DefinedError{Code: 6006, StatusCode: http.StatusBadRequest, Err: "signature has too many points", FrErr: "Tracé de signature trop long"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.FrErr = fmt.Sprintf(e.FrErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.FrErr = strings.Replace(e.FrErr, "%s", "", -1)
	}
	return e
}
