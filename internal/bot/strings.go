package bot

// User-facing strings. The bot speaks Russian; queries themselves may be in
// any script.
const (
	msgHelp = "🎵 Привет! Я умею искать и присылать музыку.\n\n" +
		"Напиши: найди [название трека или исполнителя]\n" +
		"Или: рандом — случайный трек\n\n" +
		"Команды: /find [запрос], /random"

	msgEmptyQuery = "❌ Не указано что искать\n💡 Напиши: найди [название трека или исполнителя]"

	msgRateLimited = "⏳ Слишком много запросов!\nПодожди 1 минуту перед следующим запросом."

	msgSearching       = "🔍 Ищу: %s\n⏳ Пожалуйста, подожди..."
	msgSearchingRandom = "🎲 Ищу случайный трек..."
	msgNoResults       = "❌ Не найдено треков по запросу: %s\n💡 Попробуй другой запрос"
	msgNoRandomTrack   = "❌ Не удалось найти случайный трек\n💡 Попробуй еще раз"
	msgPickTrack       = "🎵 Выбери трек для скачивания:"

	msgStaleSession  = "❌ Результаты поиска устарели. Начни новый поиск."
	msgWrongPick     = "❌ Неверный выбор трека."
	msgDownloading   = "⏬ Скачивается: %s\n⏱️ Длительность: %s\n\n⏳ Пожалуйста, подожди..."
	msgFetchFailed   = "❌ Не удалось скачать трек: %s\n💡 Попробуй выбрать другой трек"
	msgDeliverFailed = "❌ Ошибка отправки трека\n💡 Попробуй еще раз"

	unknownTrackTitle = "Неизвестный трек"
	unknownArtist     = "Неизвестный исполнитель"
)

// Filler words stripped from a free-text find command before searching.
var stopWords = []string{"пожалуйста", "мне", "трек", "песню", "музыку", "плз", "plz"}

// Queries the random command picks from.
var randomSearches = []string{
	"lo fi beats", "chillhop", "deep house", "synthwave", "indie rock",
	"electronic music", "jazz lounge", "ambient", "study music",
	"focus music", "relaxing music", "instrumental", "acoustic",
	"piano covers", "guitar music", "vocal trance", "dubstep",
	"tropical house", "future bass", "retro wave", "city pop",
	"latin music", "reggaeton", "k-pop", "j-pop", "classical piano",
	"orchestral", "film scores", "video game music",
}

// Short well-wishes appended to a delivered track's caption.
var wishes = []string{
	"Хорошего дня! 🌟", "Отличного настроения! 😊", "Пусть день будет прекрасным! ✨",
	"Удачи во всех начинаниях! 🍀", "Прекрасной музыки! 🎵", "Наслаждайтесь моментом! 🌈",
	"Пусть музыка вдохновляет! 🎶", "Тепла и уюта! ☕", "Ярких впечатлений! 🎇",
	"Пусть всё получится! 💪", "Мира и добра! ☀️", "Приятного прослушивания! 🎧",
}
