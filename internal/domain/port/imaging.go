package port

import "thermal-inspector/internal/domain/entity"

// ImageCodec открывает изображения с диска
type ImageCodec interface {
	// Open декодирует файл; ошибка означает, что файл не читается как изображение
	Open(path string) (Frame, error)
}

// Frame декодированное изображение
type Frame interface {
	// Size возвращает ширину и высоту
	Size() (width, height int)

	// Intensity возвращает канал Lab-представления (0 L, 1 a, 2 b)
	Intensity(channel int) (*entity.Plane, error)

	// MaskedIntensity возвращает канал Lab только для пикселей внутри цветового окна
	MaskedIntensity(window entity.ColorWindow, channel int) ([]uint8, error)

	// Draw рисует отметки поверх изображения
	Draw(marks []entity.Mark) error

	// Save кодирует изображение по расширению файла
	Save(path string) error

	Close()
}
