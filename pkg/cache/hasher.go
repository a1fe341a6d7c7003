package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Hasher строит ключ кэша из канонического двоичного представления данных.
// Каждое значение пишется с фиксированной длиной, срезы предваряются длиной,
// поэтому разные последовательности значений не дают одинаковый поток байт.
type Hasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewHasher создаёт хешер на sha256
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Int добавляет целое число
func (h *Hasher) Int(v int64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(v))
	h.h.Write(h.buf[:])
	return h
}

// Float добавляет число с плавающей точкой побитово
func (h *Hasher) Float(v float64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], math.Float64bits(v))
	h.h.Write(h.buf[:])
	return h
}

// Ints добавляет срез целых
func (h *Hasher) Ints(vs []int) *Hasher {
	h.Int(int64(len(vs)))
	for _, v := range vs {
		h.Int(int64(v))
	}
	return h
}

// String добавляет строку
func (h *Hasher) String(s string) *Hasher {
	h.Int(int64(len(s)))
	h.h.Write([]byte(s))
	return h
}

// Sum возвращает hex-представление хеша
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
