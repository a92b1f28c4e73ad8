// Package quotes serves the motivational one-liners shown on the dashboard.
package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"
)

// Pool hands out quotes at random without repeating one until all were shown.
type Pool struct {
	mu        sync.Mutex
	quotes    []string
	remaining []string
	rng       *rand.Rand
	fallback  string
}

type file struct {
	Quotes []string `json:"quotes"`
}

// NewPool builds a pool over quotes. An empty pool always returns the fallback line for lang.
func NewPool(quotes []string, lang string, seed int64) *Pool {
	p := &Pool{
		quotes:   append([]string(nil), quotes...),
		rng:      rand.New(rand.NewSource(seed)),
		fallback: fallbackLine(lang),
	}
	p.refill()
	return p
}

// Load reads {"quotes": [...]} from path. A blank path or a missing file falls
// back to the built-in quotes for lang; a malformed file is an error.
func Load(path, lang string) (*Pool, error) {
	seed := time.Now().UnixNano()
	if path == "" {
		return NewPool(Defaults(lang), lang, seed), nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewPool(Defaults(lang), lang, seed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse quotes %s: %w", path, err)
	}
	return NewPool(f.Quotes, lang, seed), nil
}

// Next draws the next quote.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.quotes) == 0 {
		return p.fallback
	}
	if len(p.remaining) == 0 {
		p.refill()
	}
	i := p.rng.Intn(len(p.remaining))
	q := p.remaining[i]
	p.remaining[i] = p.remaining[len(p.remaining)-1]
	p.remaining = p.remaining[:len(p.remaining)-1]
	return q
}

// Len returns the number of distinct quotes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.quotes)
}

func (p *Pool) refill() {
	p.remaining = append(p.remaining[:0], p.quotes...)
}

func fallbackLine(lang string) string {
	if lang == "ru" {
		return "Сегодня — хороший день чтобы win!"
	}
	return "Today is a good day to win!"
}

// Defaults returns the built-in quotes for lang.
func Defaults(lang string) []string {
	if lang == "ru" {
		return []string{
			"Сегодня я снова вынесу. Или хотя бы вынесут меня — тоже результат.",
			"Удача в Дельте — как лут: слышал, что существует, но не видел.",
			"Главное — не победа, а красиво умереть.",
			"Мой баланс тает, но зато настроение стабильное: тоже тает.",
			"Если рейд прошёл спокойно — это не рейд, это баг.",
			"Я не проигрываю. Я просто даю другим шанс почувствовать себя победителями.",
			"Победа — это когда ты хотя бы не последний.",
			"Дельта учит смирению. Каждый день.",
			"Сегодня я обязательно найду красную... В чужом рюкзаке.",
			"Главное не тильтануть. Упс, поздно.",
		}
	}
	return []string{
		"Today I shall triumph. Or at least die with dignity. Probably just die.",
		"Luck in Delta is like loot: theoretically exists, practically a myth.",
		"It's not about winning, it's about making your death look tactical.",
		"My balance is dropping faster than my K/D ratio.",
		"If the raid went smoothly, it wasn't a raid, it was a bug.",
		"I don't lose. I merely give others a fleeting moment of false hope.",
		"Victory is when you're not the first one dead. That's growth.",
		"Delta teaches humility. Repeatedly. Aggressively.",
		"Today I'll definitely find a red... in someone else's backpack.",
		"The key is not to tilt. Oh dear, too late.",
	}
}
