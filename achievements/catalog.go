// Package achievements holds the fixed achievement catalog and the rule engine
// that unlocks entries from tracker events.
package achievements

// Catalog ids. Hidden (0) is a placeholder that is never unlocked.
const (
	Hidden uint = iota
	BestUser
	Hodler
	PaperHands
	BadStart
	Bruteforce
	IBelieve
	DegenMoment
	JustOneMore
	TiltResistant
	TiltLord
	NotSure
	AltTabWarrior
	ConfidenceZero
	DoubleCheck
	Microflex
	ReadingEnjoyer
	Combo
	Paranoia
	RedDay
	EasterEgg
)

// Total is the number of unlockable achievements, excluding the hidden placeholder.
const Total = 20

// Trigger names the event that evaluates an achievement's predicate.
type Trigger string

const (
	TriggerNone       Trigger = "none"
	TriggerScan       Trigger = "scan"
	TriggerRollover   Trigger = "rollover"
	TriggerTap        Trigger = "locked_tap"
	TriggerLaunch     Trigger = "app_launch"
	TriggerActivation Trigger = "app_activation"
	TriggerTilt       Trigger = "tilt"
	TriggerCheater    Trigger = "cheater"
	TriggerUndo       Trigger = "cheater_undo"
	TriggerRed        Trigger = "red"
	TriggerQuote      Trigger = "quote"
	TriggerCombo      Trigger = "tilt_cheater_red"
	TriggerEasterEgg  Trigger = "easter_egg"
)

// Definition is the static description of one achievement.
type Definition struct {
	ID            uint    `json:"id"`
	TitleEN       string  `json:"title_en"`
	TitleRU       string  `json:"title_ru"`
	DescriptionEN string  `json:"description_en"`
	DescriptionRU string  `json:"description_ru"`
	Icon          string  `json:"icon"`
	Trigger       Trigger `json:"trigger"`
}

// Title returns the title in lang ("ru" or anything else for English).
func (d Definition) Title(lang string) string {
	if lang == "ru" {
		return d.TitleRU
	}
	return d.TitleEN
}

// Description returns the description in lang.
func (d Definition) Description(lang string) string {
	if lang == "ru" {
		return d.DescriptionRU
	}
	return d.DescriptionEN
}

var catalog = [...]Definition{
	{Hidden, "Locked", "Закрыто", "Hidden Achievement", "Скрытая ачивка", "0_Locked.png", TriggerNone},
	{BestUser, "Best User", "Лучший пользователь", "Make more than 50 scans total", "Сделай больше 50 сканов", "1_Best_User.png", TriggerScan},
	{Hodler, "Hodler", "Инвестор", "Finish your last 3 active days in profit", "Последние 3 игровых дня в плюсе", "2_Hodler.png", TriggerRollover},
	{PaperHands, "Paper Hands", "Просто инфляция", "Finish your last 3 active days in loss", "Последние 3 игровых дня в минусе", "3_Paper_Hands.png", TriggerRollover},
	{BadStart, "Bad Start", "Плохой старт", "Start the day with loss", "Начните день с минуса", "4_Bad_Start.png", TriggerScan},
	{Bruteforce, "Bruteforce", "Брутфорс", "Trying harder won't unlock it… or will it?", "Думал, что если жать сильнее — откроется?", "5_Bruteforce.png", TriggerTap},
	{IBelieve, "I Believe!", "Бам!", "Gain more than 3M in a single jump", "Получите разовый плюс > +3 млн.", "6_I_Believe!.png", TriggerScan},
	{DegenMoment, "Degen Moment", "Упс...", "Lose more than 3M in a single drop", "Получите разовый минус < −3 млн.", "7_Degen_Moment.png", TriggerScan},
	{JustOneMore, "Just One More", "Ночная каточка", "Open the app after midnight.", "Откройте приложение после полуночи.", "8_Just_One_More.png", TriggerLaunch},
	{TiltResistant, "Tilt Resistant", "Тильто-устойчивый", "Finish the day without tilting.", "Закончите день, ни разу не нажав \"Я сгорел\".", "9_Tilt_Resistant.png", TriggerRollover},
	{TiltLord, "Tilt Lord", "Лорд тильта", "Hit \"I'm Tilted\" 20 times total.", "Нажмите \"Я сгорел\" 20 раз всего.", "10_Tilt_Lord.png", TriggerTilt},
	{NotSure, "Not sure", "Передумал..", "Met a cheater, then undid it", "Отметил читака, затем отменил решение", "11_Not_sure.png", TriggerUndo},
	{AltTabWarrior, "Alt+Tab Warrior", "Alt+Tab воин", "Open the app 5 times in one day.", "Откройте приложение 5 раз за день.", "12_Alt+Tab_Warrior.png", TriggerActivation},
	{ConfidenceZero, "Confidence Zero", "Уверености нет", "Tilt immediately after launching the app.", "Нажмите \"Я сгорел\" сразу после запуска.", "13_Confidence_Zero.png", TriggerTilt},
	{DoubleCheck, "Double Check", "Даблчекер", "Make two scans within 3 seconds.", "Сделайте два скана в течение 3 секунд.", "14_Double_Check.png", TriggerScan},
	{Microflex, "Microflex", "Микроплюсик", "Get a tiny balance change ≤100k.", "Получите микроизменение ≤100k.", "15_Microflex.png", TriggerScan},
	{ReadingEnjoyer, "Reading Enjoyer", "Цитата Энджоер", "Read 10 quotes in a single day.", "Прочитайте 10 цитат за день.", "16_Reading_Enjoyer.png", TriggerQuote},
	{Combo, "C-c-combo", "К-к-комбо", "Cheater + Tilt + Red in one day.", "Читер + Сгорел + Красная за день.", "17_C_c_combo.png", TriggerCombo},
	{Paranoia, "Paranoia", "Паранойя", "Meet 5 cheaters in one day.", "Отметьте 5+ читеров за день.", "18_Paranoia.png", TriggerCheater},
	{RedDay, "Red day", "Красный день", "Find 5 Reds in one day.", "Нажмите Красная 5+ раз за день.", "19_Red_day.png", TriggerRed},
	{EasterEgg, "WOA, HOA!", "Нашел!", "Find the Heart of Africa in the app.", "Найдите Сердце Африки в приложении.", "20_WOA_HOA.png", TriggerEasterEgg},
}

// Catalog returns a copy of every definition ordered by id.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup returns the definition for id.
func Lookup(id uint) (Definition, bool) {
	if id >= uint(len(catalog)) {
		return Definition{}, false
	}
	return catalog[id], true
}

// IDs lists every catalog id including the hidden placeholder.
func IDs() []uint {
	ids := make([]uint, len(catalog))
	for i := range catalog {
		ids[i] = catalog[i].ID
	}
	return ids
}
