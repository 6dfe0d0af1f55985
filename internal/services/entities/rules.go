package entities

import (
	"regexp"
	"strings"

	"github.com/ternarybob/docforge/internal/models"
)

// Rule pass confidences. Tight, unambiguous patterns score high;
// heuristic passes like bare capitalized sequences score low so a
// higher-confidence hit on the same span wins at dedup time.
const (
	confDate       = 0.95
	confMoney      = 0.95
	confSSN        = 0.95
	confTitledName = 0.90
	confPronoun    = 0.90
	confLabeledRef = 0.85
	confRole       = 0.80
	confAlnumCode  = 0.70
	confCapName    = 0.65
)

var (
	monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

	// Month DD, YYYY and DD Month YYYY
	reDateMonthFirst = regexp.MustCompile(monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}`)
	reDateDayFirst   = regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `,?\s+\d{4}`)

	// $1,250.00 / €500 / 1,250.00 USD / 500 dollars
	reMoneySymbol = regexp.MustCompile(`[$€£¥]\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`)
	reMoneySuffix = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP|AUD|CAD|dollars|euros|pounds)\b`)

	// Mr. John Smith, Dr Jane Doe
	reTitledName = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Miss|Dr|Prof|Hon|Rev)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}`)

	// Two or more capitalized words, filtered by the stop-list below
	reCapSequence = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)

	// Senior Software Engineer, Chief Executive Officer, Junior Sales Manager
	reRole = regexp.MustCompile(`\b(?:Senior|Junior|Lead|Chief|Principal|Executive|Assistant|Associate|Deputy|Head)\s+(?:[A-Z][a-z]+\s+)?(?:Officer|Engineer|Manager|Director|Analyst|Developer|Designer|Consultant|Administrator|Coordinator|Specialist|Accountant|Attorney)\b`)

	rePronoun = regexp.MustCompile(`(?i)\b(?:he|she|him|her|his|hers|himself|herself)\b`)

	// 123-45-6789
	reSSN = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// Reference: ABC-1234, Invoice #98765, Account No. 4421
	reLabeledRef = regexp.MustCompile(`(?i)\b(?:reference|invoice|account|case|order|policy|contract|claim)\s*(?:number|no\.?|#|:)\s*([A-Z0-9][A-Z0-9-]{2,})`)

	// Bare alphanumeric codes with both letters and digits, e.g. AB12CD34
	reAlnumCode = regexp.MustCompile(`\b(?:[A-Z]+\d|\d+[A-Z])[A-Z0-9-]{4,}\b`)
)

// notAName filters capitalized sequences that start sentences or common
// document boilerplate rather than naming a person.
var notAName = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"Please": true, "Thank": true, "Sincerely": true, "Regards": true,
	"Dear": true, "Best": true, "Kind": true, "Yours": true,
	"Date": true, "Invoice": true, "Amount": true, "Total": true,
	"Page": true, "Section": true, "Terms": true, "Agreement": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
}

// ruleEntities runs every deterministic pattern pass over text. The
// source text is never mutated; every hit carries its span offsets.
func ruleEntities(text string) []models.Entity {
	var out []models.Entity

	collect := func(re *regexp.Regexp, entityType models.EntityType, confidence float64) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, models.Entity{
				Type:       entityType,
				Text:       text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Confidence: confidence,
				Origin:     models.OriginRule,
			})
		}
	}

	collect(reDateMonthFirst, models.EntityDate, confDate)
	collect(reDateDayFirst, models.EntityDate, confDate)
	collect(reMoneySymbol, models.EntityMoney, confMoney)
	collect(reMoneySuffix, models.EntityMoney, confMoney)
	collect(reTitledName, models.EntityPerson, confTitledName)
	collect(reRole, models.EntityRole, confRole)
	collect(rePronoun, models.EntityGenderPronoun, confPronoun)
	collect(reSSN, models.EntityIdentifier, confSSN)
	collect(reAlnumCode, models.EntityIdentifier, confAlnumCode)

	// Labeled references capture only the code, not the label
	for _, m := range reLabeledRef.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		out = append(out, models.Entity{
			Type:       models.EntityIdentifier,
			Text:       text[start:end],
			Start:      start,
			End:        end,
			Confidence: confLabeledRef,
			Origin:     models.OriginRule,
		})
	}

	// Capitalized sequences become low-confidence person candidates
	// unless the leading word is on the stop-list
	for _, loc := range reCapSequence.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		first := match
		if idx := strings.IndexByte(match, ' '); idx > 0 {
			first = match[:idx]
		}
		if notAName[first] {
			continue
		}
		out = append(out, models.Entity{
			Type:       models.EntityPerson,
			Text:       match,
			Start:      loc[0],
			End:        loc[1],
			Confidence: confCapName,
			Origin:     models.OriginRule,
		})
	}

	return out
}
