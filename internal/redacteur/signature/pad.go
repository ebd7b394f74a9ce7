// Пакет signature реализует блок подписи: рисование на холсте, загрузку
// изображения и фиксацию подписи вместе со временем и адресом клиента.
package signature

import (
	"errors"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

type State string

const (
	Unsigned State = "unsigned"
	Drawing  State = "drawing"
	Signed   State = "signed"
)

const RequiredWarning = "Signature obligatoire"

var (
	ErrEmptyDrawing  = errors.New("Aucun tracé à enregistrer")
	ErrAlreadySigned = errors.New("Le document est déjà signé")
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke []Point

// Pad - состояние холста подписи для одного блока.
type Pad struct {
	Width, Height int

	state   State
	strokes []Stroke
	down    bool
}

// NewPad создает холст. Для уже подписанного блока холст находится в состоянии Signed.
func NewPad(b *edtypes.Signature, width, height int) *Pad {
	p := &Pad{Width: width, Height: height, state: Unsigned}
	if b.Signed() {
		p.state = Signed
	}
	return p
}

func (p *Pad) State() State {
	return p.state
}

func (p *Pad) Strokes() []Stroke {
	return p.strokes
}

// PointerDown начинает новый штрих. На подписанном блоке холст не активен.
func (p *Pad) PointerDown(pt Point) bool {
	if p.state == Signed {
		return false
	}
	p.state = Drawing
	p.down = true
	p.strokes = append(p.strokes, Stroke{pt})
	return true
}

// PointerMove продолжает текущий штрих, пока указатель нажат.
func (p *Pad) PointerMove(pt Point) {
	if !p.down || len(p.strokes) == 0 {
		return
	}
	last := len(p.strokes) - 1
	p.strokes[last] = append(p.strokes[last], pt)
}

// PointerUp завершает штрих.
func (p *Pad) PointerUp() {
	p.down = false
}

// PointerLeave завершает штрих при выходе указателя за пределы холста.
func (p *Pad) PointerLeave() {
	p.down = false
}

// Clear очищает холст. Ранее сохраненная подпись не затрагивается.
func (p *Pad) Clear() {
	p.strokes = nil
	p.down = false
	if p.state == Drawing {
		p.state = Unsigned
	}
}

// Save растеризует штрихи и одним обновлением записывает подпись, время и адрес.
func (p *Pad) Save(b *edtypes.Signature, ip string, now time.Time) error {
	if p.state == Signed {
		return ErrAlreadySigned
	}
	dataURL, err := Rasterize(p.strokes, p.Width, p.Height)
	if err != nil {
		return err
	}

	commit(b, dataURL, ip, now)
	p.state = Signed
	p.strokes = nil
	p.down = false
	return nil
}

// Upload фиксирует подпись из загруженного изображения, минуя рисование.
func (p *Pad) Upload(b *edtypes.Signature, dataURL string, ip string, now time.Time) error {
	if p.state == Signed {
		return ErrAlreadySigned
	}
	commit(b, dataURL, ip, now)
	p.state = Signed
	p.strokes = nil
	return nil
}

// Remove удаляет подпись и возвращает холст в состояние Unsigned.
func (p *Pad) Remove(b *edtypes.Signature) {
	Remove(b)
	p.state = Unsigned
	p.strokes = nil
	p.down = false
}

func commit(b *edtypes.Signature, dataURL, ip string, now time.Time) {
	signedAt := now.UTC()
	*b = edtypes.Signature{
		ID:        b.ID,
		Signatory: b.Signatory,
		Role:      b.Role,
		Location:  b.Location,
		Required:  b.Required,
		Signature: dataURL,
		SignedAt:  &signedAt,
		IPAddress: ip,
		AssetId:   b.AssetId,
	}
}

// Remove сбрасывает подпись блока.
func Remove(b *edtypes.Signature) {
	b.Signature = ""
	b.SignedAt = nil
	b.IPAddress = ""
	b.AssetId = ""
}

// Warning возвращает предупреждение для обязательной неподписанной подписи.
// Предупреждение только информирует и ничего не блокирует.
func Warning(b *edtypes.Signature) string {
	if b.Required && !b.Signed() {
		return RequiredWarning
	}
	return ""
}

// Sign воспроизводит штрихи на новом холсте и сохраняет подпись.
func Sign(b *edtypes.Signature, strokes []Stroke, width, height int, ip string, now time.Time) error {
	p := NewPad(b, width, height)
	for _, s := range strokes {
		if len(s) == 0 {
			continue
		}
		if !p.PointerDown(s[0]) {
			return ErrAlreadySigned
		}
		for _, pt := range s[1:] {
			p.PointerMove(pt)
		}
		p.PointerUp()
	}
	return p.Save(b, ip, now)
}

func hasInk(strokes []Stroke) bool {
	for _, s := range strokes {
		if len(s) > 0 {
			return true
		}
	}
	return false
}
