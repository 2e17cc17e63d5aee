package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDuties_BulletedLines(t *testing.T) {
	text := "• Прийом товару\n• Викладка товару\n- Робота з касою"
	duties := SplitDuties(text)
	assert.Equal(t, []string{"Прийом товару", "Викладка товару", "Робота з касою"}, duties)
}

func TestSplitDuties_PrefixForcesStrictSplit(t *testing.T) {
	// With an explicit "duties:" marker only sentence punctuation
	// separates items, so the comma stays inside the second duty.
	text := "Обов'язки: завантаження; розвантаження, сортування"
	duties := SplitDuties(text)
	assert.Equal(t, []string{"завантаження", "розвантаження, сортування"}, duties)
}

func TestSplitDuties_ProseStaysCoarse(t *testing.T) {
	text := "Керував вантажним автомобілем по місту та області. Здійснював доставку товарів клієнтам у строк"
	duties := SplitDuties(text)
	assert.Equal(t, []string{
		"Керував вантажним автомобілем по місту та області",
		"Здійснював доставку товарів клієнтам у строк",
	}, duties)
}

func TestSplitDuties_CommaList(t *testing.T) {
	duties := SplitDuties("прийом товару, викладка, робота з касою")
	assert.Equal(t, []string{"прийом товару", "викладка", "робота з касою"}, duties)
}

func TestSplitDuties_ParenthesesProtected(t *testing.T) {
	duties := SplitDuties("водіння (категорії B, C), ремонт")
	assert.Equal(t, []string{"водіння (категорії B, C)", "ремонт"}, duties)
}

func TestSplitDuties_DedupCaseInsensitive(t *testing.T) {
	duties := SplitDuties("Доставка. доставка. Монтаж")
	assert.Equal(t, []string{"Доставка", "Монтаж"}, duties)
}

func TestSplitDuties_HeaderOnly(t *testing.T) {
	assert.Nil(t, SplitDuties("Обов'язки:"))
	assert.Nil(t, SplitDuties("ОБЯЗАННОСТИ"))
	assert.Nil(t, SplitDuties("   "))
}

func TestSplitDutiesStrict(t *testing.T) {
	duties := SplitDutiesStrict("розвантаження фур; приймання товару, облік.")
	assert.Equal(t, []string{"розвантаження фур", "приймання товару, облік"}, duties)
	assert.Nil(t, SplitDutiesStrict(""))
}

func TestDutiesFromLines(t *testing.T) {
	lines := []string{
		"• Доставка вантажів по Києву",
		"ремонт, обслуговування",
		"ОБЯЗАННОСТИ",
	}
	duties, text := dutiesFromLines(lines)
	assert.Equal(t, []string{"Доставка вантажів по Києву", "ремонт", "обслуговування"}, duties)
	assert.Equal(t, "Доставка вантажів по Києву ремонт обслуговування", text)
}
