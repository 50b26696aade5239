// Package slug isimden URL uyumlu tanımlayıcı üretir ve çakışma halinde
// sıralı "-copy", "-copy-1"... son ekleri dener.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	copyNameSuffix = " copy"
	maxAttempts    = 1000
)

// NFD ile ayrışmayan harfler
var foldReplacer = strings.NewReplacer(
	"ı", "i", "İ", "I",
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"ß", "ss", "æ", "ae", "Æ", "AE",
)

// Make saf ve deterministiktir: küçük harf, ASCII katlama, boşluk -> tire,
// harf/rakam dışındaki karakterler atılır.
func Make(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		foldReplacer.Replace(name),
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// NextCopy kopya için name+" copy", name+" copy 1", name+" copy 2"...
// adlarını sırayla dener ve slug'ı exists false dönen ilk adı verir. Slug
// her zaman addan üretilir, böylece kopyanın adı ve slug'ı birbirini tutar.
func NextCopy(name string, exists func(candidate string) (bool, error)) (copyName, copySlug string, err error) {
	for i := 0; i < maxAttempts; i++ {
		copyName = name + copyNameSuffix
		if i > 0 {
			copyName = fmt.Sprintf("%s%s %d", name, copyNameSuffix, i)
		}
		copySlug = Make(copyName)
		taken, err := exists(copySlug)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return copyName, copySlug, nil
		}
	}
	return "", "", fmt.Errorf("%q için boş slug bulunamadı", name)
}

// Taken slug'ın model tablosunda kullanılıp kullanılmadığını döndürür.
// excludeID sıfırdan farklıysa o kayıt hariç tutulur. Soft-delete edilmiş
// kayıtları da saymak için tx.Unscoped() verilmelidir.
func Taken(tx *gorm.DB, model any, slug string, excludeID uint) (bool, error) {
	q := tx.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
