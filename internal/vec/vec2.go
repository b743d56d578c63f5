package vec

// Vec2 - горизонтальная проекция позиции (X, Z мира хранится в X, Y)
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует координаты колонки в координаты чанка 16×16
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Y: v.Y >> 4}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0xF, Y: v.Y & 0xF}
}
