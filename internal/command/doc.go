// Package command turns a user's lighting configuration and a presence
// transition into the JSON command a lighting controller understands.
//
// Two payload shapes exist on the wire:
//
//	{"effect":"wakeup","led":2,"color":"#FF0000","duration":6000,"next":"breathe"}
//	{"leds":[{"index":5,"color":"#00FF00","brightness":128}]}
//
// The first names an animation the controller runs itself; the second sets
// LEDs directly. Build is pure: equal inputs give byte-identical Encode output.
package command
