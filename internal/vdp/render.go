package vdp

const (
	tileSize   = 8
	maxSprites = 80
)

// Sprite is one entry of the sprite attribute table, decoded from its
// four attribute words exactly as
// `original_source/heaven_ice/vdp.cpp`'s Sprite constructor does
// (spec.md §4.9).
type Sprite struct {
	Y, X          int
	Height, Width int
	Prio          Priority
	Palette       uint32
	YFlip, XFlip  bool
	TilesAddr     uint32
	Next          uint32
}

func parseSprite(w1, w2, w3, w4 uint16) (Sprite, error) {
	prio, err := PriorityOfCode(uint8(bits(uint32(w3), 15, 1)))
	if err != nil {
		return Sprite{}, err
	}
	return Sprite{
		Y:         int(bits(uint32(w1), 0, 9)),
		X:         int(bits(uint32(w4), 0, 9)),
		Height:    int(bits(uint32(w2), 8, 2)) + 1,
		Width:     int(bits(uint32(w2), 10, 2)) + 1,
		Prio:      prio,
		Palette:   bits(uint32(w3), 13, 2),
		YFlip:     bits(uint32(w3), 12, 1) == 1,
		XFlip:     bits(uint32(w3), 11, 1) == 1,
		TilesAddr: bits(uint32(w3), 0, 11) * 0x20,
		Next:      bits(uint32(w2), 0, 7),
	}, nil
}

// PlaneCell is one 16-bit plane-map entry (spec.md §4.9).
type PlaneCell struct {
	Prio         Priority
	Palette      uint32
	YFlip, XFlip bool
	TileAddr     uint32
}

func parsePlaneCell(w uint16) (PlaneCell, error) {
	prio, err := PriorityOfCode(uint8(bits(uint32(w), 15, 1)))
	if err != nil {
		return PlaneCell{}, err
	}
	return PlaneCell{
		Prio:     prio,
		Palette:  bits(uint32(w), 13, 2),
		YFlip:    bits(uint32(w), 12, 1) == 1,
		XFlip:    bits(uint32(w), 11, 1) == 1,
		TileAddr: bits(uint32(w), 0, 11) * 0x20,
	}, nil
}

// floorDiv and floorMod implement the source program's DIV/MOD helpers:
// a floor division/modulo pair that stays well-behaved for the negative
// scroll offsets plane wrapping needs (spec.md §4.9's "wrapping modulo
// plane size").
func floorMod(a, b int) int { return ((a % b) + b) % b }
func floorDiv(a, b int) int { return (a - floorMod(a, b)) / b }

// getSprites walks the sprite attribute table from its head, following
// each sprite's `next` link, stopping at a zero link or after
// maxSprites entries, then returns the list tail-first: the table's
// last-visited sprite draws first and is overlaid by every sprite drawn
// after it (spec.md §4.9).
func (v *VDP) getSprites() ([]Sprite, error) {
	tableAddr := v.Reg.SpriteTableAddr()
	var sprites []Sprite
	idx := uint32(0)
	for n := 0; n < maxSprites; n++ {
		addr := tableAddr + idx*8
		w1, err := v.readTarget(VRAM, addr+0)
		if err != nil {
			return nil, err
		}
		w2, err := v.readTarget(VRAM, addr+2)
		if err != nil {
			return nil, err
		}
		w3, err := v.readTarget(VRAM, addr+4)
		if err != nil {
			return nil, err
		}
		w4, err := v.readTarget(VRAM, addr+6)
		if err != nil {
			return nil, err
		}
		s, err := parseSprite(w1, w2, w3, w4)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, s)
		idx = s.Next
		if idx == 0 {
			break
		}
	}
	for i, j := 0, len(sprites)-1; i < j; i, j = i+1, j-1 {
		sprites[i], sprites[j] = sprites[j], sprites[i]
	}
	return sprites, nil
}

func (v *VDP) cramColor(paletteIdx uint32, color uint32) (uint16, error) {
	paddr := paletteIdx * 0x20
	return v.readTarget(CRAM, paddr+color*2)
}

// renderTile draws one 8x8, 4-bit-per-pixel tile at (y, x), honoring
// flip flags and skipping a color index of 0 as transparent (spec.md
// §4.9).
func (v *VDP) renderTile(f *Frame, tileAddr, paletteIdx uint32, y, x int, yflip, xflip bool) error {
	for dy := 0; dy < tileSize; dy++ {
		for dx := 0; dx < tileSize; dx++ {
			px, py := x+dx, y+dy
			if xflip {
				px = x - dx + 7
			}
			if yflip {
				py = y - dy + 7
			}
			if px < 0 || px >= f.Width || py < 0 || py >= f.Height {
				continue
			}
			nbAddr := tileAddr*2 + uint32(dy*tileSize+dx)
			word, err := v.readTarget(VRAM, (nbAddr/4)*2)
			if err != nil {
				return err
			}
			colorIdx := bits(uint32(word), int(3-(nbAddr%4))*4, 4)
			if colorIdx == 0 {
				continue
			}
			color, err := v.cramColor(paletteIdx, colorIdx)
			if err != nil {
				return err
			}
			f.SetPixel(px, py,
				uint8(bits(uint32(color), 1, 3))*36,
				uint8(bits(uint32(color), 5, 3))*36,
				uint8(bits(uint32(color), 9, 3))*36)
		}
	}
	return nil
}

func (v *VDP) renderPlaneCell(f *Frame, addr uint32, y, x int, prio Priority) error {
	word, err := v.readTarget(VRAM, addr)
	if err != nil {
		return err
	}
	cell, err := parsePlaneCell(word)
	if err != nil {
		return err
	}
	if cell.Prio != prio {
		return nil
	}
	return v.renderTile(f, cell.TileAddr, cell.Palette, y, x, cell.YFlip, cell.XFlip)
}

// hscrollAmount and vscrollAmount read the per-plane scroll offset.
// Only the "whole screen" scroll kind is implemented; any other
// register-selected mode is fatal (spec.md §4.9).
func (v *VDP) hscrollAmount(plane Plane) (int, error) {
	kind, err := v.Reg.HScrollKind()
	if err != nil {
		return 0, err
	}
	if kind != HScrollWholeScreen {
		return 0, &CommandError{Reason: "unsupported hscroll kind"}
	}
	addr := v.Reg.HScrollAddr()
	switch plane {
	case Foreground:
	case Background:
		addr += 2
	case Window:
		return 0, &CommandError{Reason: "window plane does not scroll"}
	}
	word, err := v.readTarget(VRAM, addr)
	if err != nil {
		return 0, err
	}
	return int(bits(uint32(word), 0, 10)), nil
}

func (v *VDP) vscrollAmount(plane Plane) (int, error) {
	kind, err := v.Reg.VScrollKind()
	if err != nil {
		return 0, err
	}
	if kind != VScrollWholeScreen {
		return 0, &CommandError{Reason: "unsupported vscroll kind"}
	}
	addr := uint32(0)
	switch plane {
	case Foreground:
	case Background:
		addr = 2
	case Window:
		return 0, &CommandError{Reason: "window plane does not scroll"}
	}
	word, err := v.readTarget(VSRAM, addr)
	if err != nil {
		return 0, err
	}
	return int(bits(uint32(word), 0, 10)), nil
}

// renderPlane draws every tile of plane at priority prio, scrolled and
// wrapped modulo the plane's (width, height) in cells. The loop bound
// is `<=`, not `<`, matching the source program exactly: it draws one
// extra row/column past the frame edge, which renderTile then clips
// (spec.md §4.9, `original_source/heaven_ice/vdp.cpp` render_plane).
func (v *VDP) renderPlane(f *Frame, plane Plane, prio Priority) error {
	planeAddr := v.Reg.PlaneAddr(plane)
	height, err := v.Reg.PlaneHeight()
	if err != nil {
		return err
	}
	width, err := v.Reg.PlaneWidth()
	if err != nil {
		return err
	}
	scrollX, err := v.hscrollAmount(plane)
	if err != nil {
		return err
	}
	scrollY, err := v.vscrollAmount(plane)
	if err != nil {
		return err
	}

	for y := 0; y <= f.Height; y += tileSize {
		ay := floorDiv(y+scrollY, tileSize)
		cy := floorMod(ay, height)
		ty := ay*tileSize - scrollY
		for x := 0; x <= f.Width; x += tileSize {
			ax := floorDiv(x-scrollX, tileSize)
			cx := floorMod(ax, width)
			tx := ax*tileSize + scrollX

			tileAddr := planeAddr + uint32(cx+cy*width)*2
			if err := v.renderPlaneCell(f, tileAddr, ty, tx, prio); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderWindow draws the window plane's vertical half (top or bottom,
// per register 0x11 bit 7) at full screen width. The horizontal split
// (register 0x11 bit 7 read a second time as "window right") is
// mirrored as dead code per the source program's own commented-out
// branch — see DESIGN.md's Open Question decision.
func (v *VDP) renderWindow(f *Frame, prio Priority) error {
	addr := v.Reg.PlaneAddr(Window)
	var y0, y1 int
	if v.Reg.WindowBottom() {
		y0, y1 = int(v.Reg.WindowY()), ScreenHeight
	} else {
		y0, y1 = 0, int(v.Reg.WindowY())
	}
	x0, x1 := 0, ScreenWidth

	width, err := v.Reg.PlaneWidth()
	if err != nil {
		return err
	}

	for y := y0; y < y1; y += tileSize {
		lineAddr := addr + uint32(width*y/4)
		for x := x0; x < x1; x += tileSize {
			cellAddr := lineAddr + uint32(x/4)
			if err := v.renderPlaneCell(f, cellAddr, y, x, prio); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *VDP) renderSprite(f *Frame, s Sprite, y, x int) error {
	addr := s.TilesAddr
	for cx := 0; cx < s.Width; cx++ {
		x0 := x + cx*tileSize
		if s.XFlip {
			x0 = x + (s.Width-1-cx)*tileSize
		}
		for cy := 0; cy < s.Height; cy++ {
			y0 := y + cy*tileSize
			if s.YFlip {
				y0 = y + (s.Height-1-cy)*tileSize
			}
			if err := v.renderTile(f, addr, s.Palette, y0, x0, s.YFlip, s.XFlip); err != nil {
				return err
			}
			addr += 32
		}
	}
	return nil
}

func (v *VDP) renderSprites(f *Frame, prio Priority) error {
	sprites, err := v.getSprites()
	if err != nil {
		return err
	}
	for _, s := range sprites {
		if s.Prio != prio {
			continue
		}
		if err := v.renderSprite(f, s, s.Y-128, s.X-128); err != nil {
			return err
		}
	}
	return nil
}

// RenderFrame composes a full frame: for each priority layer, low then
// high, background plane, foreground plane, sprites, then window, with
// later draws overlaying earlier ones (spec.md §4.9).
func (v *VDP) RenderFrame() (*Frame, error) {
	f := newFrame(ScreenWidth, ScreenHeight)
	for _, prio := range []Priority{Low, High} {
		if err := v.renderPlane(f, Background, prio); err != nil {
			return nil, err
		}
		if err := v.renderPlane(f, Foreground, prio); err != nil {
			return nil, err
		}
		if err := v.renderSprites(f, prio); err != nil {
			return nil, err
		}
		if err := v.renderWindow(f, prio); err != nil {
			return nil, err
		}
	}
	return f, nil
}
