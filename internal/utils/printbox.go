/**
 * @file printbox.go
 * @brief Вывод текстовых окон с псевдографикой в терминале.
 *
 * Окно состоит из строк "параметр - значение", выровненных по самому
 * длинному параметру, и горизонтальных разделителей.
 */

package utils

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Регулярное выражение для поиска ANSI цветовых кодов
var ansiColorRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Константы для форматирования
const (
	LeftMargin    = 2   // Отступ от левой границы окна
	RightMargin   = 2   // Отступ от правой границы окна
	ValueGap      = 5   // Отступ значения от самого длинного параметра
	BorderWidth   = 2   // Ширина границ окна (левая + правая)
	DividerSymbol = "-" // Параметр AddLine, означающий разделитель
)

// ANSI коды цветов для текста
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Символы рамки (двойные линии)
const (
	BoxTopLeft     = "╔"
	BoxTopRight    = "╗"
	BoxBottomLeft  = "╚"
	BoxBottomRight = "╝"
	BoxHorizontal  = "═"
	BoxDivider     = "─"
	BoxVertical    = "║"
	BoxCrossLeft   = "╟"
	BoxCrossRight  = "╢"
)

// BufferItem - строка окна либо разделитель.
type BufferItem struct {
	Parameter string
	Value     string
	Color     string
	IsDivider bool
}

// WindowBuffer накапливает строки окна до вывода.
type WindowBuffer struct {
	items       []BufferItem
	minWidth    int
	maxParamLen int
}

// NewWindowBuffer создает буфер окна с минимальной шириной minWidth.
func NewWindowBuffer(minWidth int) *WindowBuffer {
	return &WindowBuffer{minWidth: minWidth}
}

/**
 * @brief Добавляет строку с параметром и значением
 * @param parameter Название параметра (DividerSymbol добавляет разделитель)
 * @param value Значение параметра
 * @param color ANSI код цвета значения (может быть пустым)
 */
func (wb *WindowBuffer) AddLine(parameter, value, color string) {
	if parameter == DividerSymbol {
		wb.AddDivider()
		return
	}
	if n := utf8.RuneCountInString(parameter); n > wb.maxParamLen {
		wb.maxParamLen = n
	}
	wb.items = append(wb.items, BufferItem{Parameter: parameter, Value: value, Color: color})
}

// AddDivider добавляет горизонтальный разделитель.
func (wb *WindowBuffer) AddDivider() {
	wb.items = append(wb.items, BufferItem{IsDivider: true})
}

// Len возвращает количество элементов в буфере.
func (wb *WindowBuffer) Len() int {
	return len(wb.items)
}

// Clear очищает буфер для повторного использования.
func (wb *WindowBuffer) Clear() {
	wb.items = nil
	wb.maxParamLen = 0
}

// width вычисляет ширину окна вместе с рамкой.
func (wb *WindowBuffer) width() int {
	content := 0
	for _, item := range wb.items {
		if item.IsDivider {
			continue
		}
		w := LeftMargin + wb.maxParamLen + ValueGap + visibleLen(item.Value) + RightMargin
		if w > content {
			content = w
		}
	}
	if total := content + BorderWidth; total > wb.minWidth {
		return total
	}
	return wb.minWidth
}

func (wb *WindowBuffer) formatLine(item BufferItem, width int) string {
	inner := width - BorderWidth
	if item.IsDivider {
		return BoxCrossLeft + strings.Repeat(BoxDivider, inner) + BoxCrossRight
	}

	left := strings.Repeat(" ", LeftMargin)
	gap := ""
	if item.Value != "" {
		gap = strings.Repeat(" ", wb.maxParamLen+ValueGap-utf8.RuneCountInString(item.Parameter))
	}
	used := LeftMargin + utf8.RuneCountInString(item.Parameter) + len([]rune(gap)) + visibleLen(item.Value)
	right := " "
	if pad := inner - used; pad > 0 {
		right = strings.Repeat(" ", pad)
	}

	value := item.Value
	if item.Color != "" && value != "" {
		value = item.Color + value + ColorReset
	}
	parameter := item.Parameter
	if item.Color != "" && item.Value == "" {
		parameter = item.Color + parameter + ColorReset
	}
	return BoxVertical + left + parameter + gap + value + right + BoxVertical
}

// Render выводит окно в w. Пустой буфер ничего не выводит.
func (wb *WindowBuffer) Render(w io.Writer) {
	if len(wb.items) == 0 {
		return
	}
	width := wb.width()
	inner := width - BorderWidth

	fmt.Fprintln(w, BoxTopLeft+strings.Repeat(BoxHorizontal, inner)+BoxTopRight)
	for _, item := range wb.items {
		fmt.Fprintln(w, wb.formatLine(item, width))
	}
	fmt.Fprintln(w, BoxBottomLeft+strings.Repeat(BoxHorizontal, inner)+BoxBottomRight)
}

// PrintBox выводит окно в стандартный вывод и очищает буфер.
func (wb *WindowBuffer) PrintBox() {
	wb.Render(os.Stdout)
	wb.Clear()
}

// visibleLen возвращает длину строки без ANSI кодов.
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiColorRegex.ReplaceAllString(s, ""))
}

// GetTerminalWidth возвращает ширину терминала в символах
// @return int Ширина терминала или 80 по умолчанию
func GetTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return 80
}
