// Package menuparse turns OCR text of a menu board into structured menu items.
package menuparse

import "strings"

const (
	CategoryMain      = "메인"
	CategorySide      = "사이드"
	CategoryAlcohol   = "주류"
	CategoryDessert   = "디저트"
	CategoryDrink     = "음료"
	CategorySet       = "세트메뉴"
	CategorySignature = "시그니처"
)

type Item struct {
	Name        string  `json:"menuName"`
	Price       int     `json:"menuPrice"`
	Description string  `json:"menuDescription"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
}

// Parse splits raw OCR text into lines and parses them.
func Parse(text string) []Item {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return ParseLines(strings.Split(text, "\n"))
}

// ParseLines runs a single pass over the lines. The result is never nil.
func ParseLines(raw []string) []Item {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = normalizeLine(l); l != "" {
			lines = append(lines, l)
		}
	}
	p := &parser{lines: lines, seen: make(map[itemKey]bool), items: []Item{}}
	p.run()
	return p.items
}

type itemKey struct {
	name  string
	price int
}

type parser struct {
	lines []string
	items  []Item
	marked []bool // per item: price carried a currency sign, unit or separator
	seen   map[itemKey]bool

	section     string // category of the current section, "" when none
	pending     string // name waiting for a price on a following line
	pendingDesc string
	descFor     []int // items from the previous line that may still take a description
}

func (p *parser) run() {
	for i, line := range p.lines {
		if isNoise(line) {
			continue
		}
		prices := findPrices(line)
		if len(prices) == 0 {
			p.textLine(i, line)
			continue
		}
		p.priceLine(line, prices)
	}
}

func (p *parser) textLine(i int, line string) {
	nextPriceOnly := p.nextIsPriceOnly(i)

	// a header directly above a bare price is really that price's name
	if cat, ok := sectionHeader(line); ok && !nextPriceOnly {
		p.section = cat
		p.pending, p.pendingDesc, p.descFor = "", "", nil
		return
	}

	// look-ahead: a sentence under an item describes it unless a bare price follows
	if len(p.descFor) > 0 && isProse(line) && !nextPriceOnly {
		for _, idx := range p.descFor {
			p.items[idx].Description = line
			p.items[idx].Confidence = confidence(p.items[idx], p.marked[idx])
		}
		p.descFor = nil
		return
	}
	p.descFor = nil

	if p.pending != "" && p.pendingDesc == "" && !isProse(p.pending) && isProse(line) && nextPriceOnly {
		p.pendingDesc = line
		return
	}

	p.pending = cleanName(line)
	p.pendingDesc = ""
}

func (p *parser) priceLine(line string, prices []priceToken) {
	head := cleanName(line[:prices[0].start])
	desc := ""
	if head == "" {
		// look-behind: "8,000" under "김치찌개"
		head, desc = p.pending, p.pendingDesc
		if head == "" {
			head = cleanName(line[prices[len(prices)-1].end:])
		}
	}
	p.pending, p.pendingDesc = "", ""
	p.descFor = nil
	if head == "" {
		return
	}

	base, label := splitSizeLabel(head)
	for k, tok := range prices {
		if k > 0 {
			seg := strings.Trim(line[prices[k-1].end:tok.start], " /|,·~-")
			switch {
			case seg == "":
				label = ""
			case isSizeLabel(seg):
				label = strings.Trim(seg, "()")
			default:
				if n := cleanName(seg); n != "" {
					base, label = splitSizeLabel(n)
				} else {
					label = ""
				}
			}
		}
		p.emit(withLabel(base, label), tok, desc)
	}
}

func (p *parser) emit(name string, tok priceToken, desc string) {
	key := itemKey{name: name, price: tok.value}
	if p.seen[key] {
		return
	}
	p.seen[key] = true

	cat := p.section
	if cat == "" {
		cat = inferCategory(name)
	}
	it := Item{Name: name, Price: tok.value, Description: desc, Category: cat}
	it.Confidence = confidence(it, tok.marked)
	p.items = append(p.items, it)
	p.marked = append(p.marked, tok.marked)
	p.descFor = append(p.descFor, len(p.items)-1)
}

func (p *parser) nextIsPriceOnly(i int) bool {
	for j := i + 1; j < len(p.lines); j++ {
		if isNoise(p.lines[j]) {
			continue
		}
		prices := findPrices(p.lines[j])
		return len(prices) > 0 && cleanName(p.lines[j][:prices[0].start]) == ""
	}
	return false
}
