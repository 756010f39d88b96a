//go:build windows

package clip

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procSendInput   = user32.NewProc("SendInput")
	procMapVirtualK = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard    = 1
	keyEventFKeyUp   = 0x0002
	keyEventFUnicode = 0x0004
	mapVKToVSC       = 0
	vkControl        = 0x11
	vkV              = 0x56
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

type windowsKeyboard struct{}

// NewKeyboard returns a Keyboard using SendInput.
func NewKeyboard() Keyboard { return windowsKeyboard{} }

func (windowsKeyboard) Paste() error {
	ctrl := scan(vkControl)
	v := scan(vkV)
	return send([]input{
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vkControl, wScan: ctrl}},
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vkV, wScan: v}},
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vkV, wScan: v, dwFlags: keyEventFKeyUp}},
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vkControl, wScan: ctrl, dwFlags: keyEventFKeyUp}},
	})
}

func (windowsKeyboard) Type(text string) error {
	units := utf16.Encode([]rune(text))
	inputs := make([]input, 0, len(units)*2)
	for _, u := range units {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyEventFUnicode}},
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyEventFUnicode | keyEventFKeyUp}},
		)
	}
	return send(inputs)
}

func scan(vk uintptr) uint16 {
	sc, _, _ := procMapVirtualK.Call(vk, mapVKToVSC)
	return uint16(sc)
}

func send(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput: sent %d of %d events: %w", n, len(inputs), err)
	}
	return nil
}
