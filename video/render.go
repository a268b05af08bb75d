package video

import "github.com/agrell/dmgcore/addr"

// renderFrame draws the whole background, window and sprite layers into the
// framebuffer in one pass, triggered once per frame on VBlank entry.
func (p *PPU) renderFrame() {
	lcdc := p.mem.ReadByte(addr.LCDC)

	if lcdc&0x01 != 0 {
		p.renderBackground(lcdc)
		if lcdc&0x20 != 0 {
			p.renderWindow(lcdc)
		}
	}
	if lcdc&0x02 != 0 {
		p.renderSprites(lcdc)
	}
}

func (p *PPU) renderBackground(lcdc uint8) {
	unsignedAddressing := lcdc&0x10 != 0
	tileMap := addr.TileMap1
	if lcdc&0x08 != 0 {
		tileMap = addr.TileMap2
	}
	p.renderTileMap(unsignedAddressing, tileMap, addr.BGP, 0, 0, false)
}

func (p *PPU) renderWindow(lcdc uint8) {
	unsignedAddressing := lcdc&0x10 != 0
	tileMap := addr.TileMap1
	if lcdc&0x40 != 0 {
		tileMap = addr.TileMap2
	}
	wy := int(p.mem.ReadByte(addr.WY))
	wx := int(p.mem.ReadByte(addr.WX)) - 7
	p.renderTileMap(unsignedAddressing, tileMap, addr.BGP, wy, wx, false)
}

// renderTileMap draws every tile of a 32x32 background/window tile map,
// starting at (originX, originY) in framebuffer space.
func (p *PPU) renderTileMap(unsignedAddressing bool, tileMap uint16, paletteAddr uint16, originY, originX int, isSprite bool) {
	for i := 0; i < tileMapWidth*tileMapHeight; i++ {
		row := i / tileMapWidth
		col := i % tileMapWidth
		tileIndex := p.mem.ReadByte(tileMap + uint16(i))
		tileAddr := tileDataAddress(unsignedAddressing, tileIndex)
		p.renderTile(originY+row*tileHeight, originX+col*tileWidth, tileAddr, paletteAddr, isSprite, false, false)
	}
}

// renderTile draws one 8x8 tile, applying the given palette and flips.
func (p *PPU) renderTile(startY, startX int, tileAddr, paletteAddr uint16, isSprite, yFlip, xFlip bool) {
	palette := p.mem.ReadByte(paletteAddr)

	for row := 0; row < tileHeight; row++ {
		y := row
		if yFlip {
			y = tileHeight - 1 - row
		}
		byte0 := p.mem.ReadByte(tileAddr + uint16(2*y))
		byte1 := p.mem.ReadByte(tileAddr + uint16(2*y+1))

		for col := uint8(0); col < tileWidth; col++ {
			x := col
			if xFlip {
				x = tileWidth - 1 - col
			}
			idx := colorIndex(byte0, byte1, x)
			if isSprite && idx == 0 {
				continue // index 0 is transparent for sprites
			}
			shade := Shade((palette >> (2 * idx)) & 0b11)
			p.fb.set(startY+row, startX+int(col), shade)
		}
	}
}

const numSprites = 40

// renderSprites draws all 40 OAM entries, honoring LCDC.2's 8x8/8x16 size
// selection. In 8x16 mode each sprite occupies two consecutive OAM entries
// (the lower bit of the entry index is ignored when computing the top
// half's address, per spec section 4.5); the pair is rendered as two
// independent 8x8 tiles rather than as a single tile with its index bit 0
// forced, so each half keeps its own OAM Y/X position and attributes (the
// second half is not placed under the first by the renderer).
// Sprite coordinates are OAM-relative, not offset by SCX/SCY: sprites and
// the scrolled background share one canvas, so a nonzero scroll visibly
// detaches sprites from the background layer drawn under them.
func (p *PPU) renderSprites(lcdc uint8) {
	tall := lcdc&0x04 != 0

	for i := 0; i < numSprites; i++ {
		if tall {
			base := uint16(i &^ 1)
			p.renderSpriteEntry(addr.OAMStart + base*4)
			p.renderSpriteEntry(addr.OAMStart + (base+1)*4)
			i++
			continue
		}
		p.renderSpriteEntry(addr.OAMStart + uint16(i*4))
	}
}

// renderSpriteEntry draws the single 8x8 tile described by one 4-byte OAM
// record at its own Y/X/attributes.
func (p *PPU) renderSpriteEntry(entryAddr uint16) {
	y := int(p.mem.ReadByte(entryAddr)) - 16
	x := int(p.mem.ReadByte(entryAddr+1)) - 8
	tileIndex := p.mem.ReadByte(entryAddr + 2)
	attrs := p.mem.ReadByte(entryAddr + 3)

	paletteAddr := uint16(addr.OBP0)
	if attrs&0x10 != 0 {
		paletteAddr = addr.OBP1
	}
	xFlip := attrs&0x20 != 0
	yFlip := attrs&0x40 != 0

	tileAddr := addr.TileData0 + uint16(tileIndex)*bytesPerTile
	p.renderTile(y, x, tileAddr, paletteAddr, true, yFlip, xFlip)
}
