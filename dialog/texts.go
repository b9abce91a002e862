package dialog

import (
	"fmt"
	"strings"

	"github.com/m3rciful/wishbot/storage"
)

// Reply keyboard labels. Matching is case-insensitive.
const (
	labelMenu           = "Меню"
	labelWishlist       = "Вишлист"
	labelFriends        = "Друзья"
	labelAddWish        = "Добавить в Вишлист"
	labelCreateWishlist = "Создать Вишлист"
	labelDeleteWish     = "Удалить из Вишлиста"
	labelViewWishlist   = "Посмотреть Вишлист"
	labelViewItem       = "Посмотреть конкретное желание"
	labelAddFriend      = "Добавить в Друзья"
	labelFriendWishlist = "Посмотреть вишлист Друга"
	labelViewRequests   = "Посмотреть входящие заявки"
	labelDeleteFriend   = "Удалить из Друзей"
	labelDeleteShort    = "Удалить"
	labelViewFriends    = "Посмотреть Друзей"
	labelAccept         = "Принять"
	labelReject         = "Отклонить"
	labelConfirm        = "Да"
	labelCancel         = "Отменить"
	labelSkipPrice      = "Не указывать"
	labelSkipDesc       = "Не добавлять"
	labelSkipPhoto      = "Без фото"
	labelSkipLink       = "Не присылать"
	labelLink           = "Ссылка"
)

const (
	textGreet        = "Привет, %s!\nЯ помогу вести твой Вишлист и делиться им с друзьями.\nВыбери раздел на клавиатуре."
	textMenu         = "Главное меню. Выберите раздел."
	textWishlistMenu = "Раздел Вишлист. Выберите действие."
	textFriendsMenu  = "Раздел Друзья. Выберите действие."
	textNeedStart    = "Введите команду /start для запуска бота"
	textCancelled    = "Действие отменено!"
	textFailure      = "Что-то пошло не так. Попробуйте позже."

	textAskWishName   = "Введите название желания"
	textAskWishPrice  = "Укажите цену (целое число)"
	textPriceError    = "Цена должна быть целым числом. Попробуйте ещё раз"
	textAskWishDesc   = "Добавьте описание желания"
	textAskWishPhoto  = "Пришлите фото желания"
	textPhotoExpected = "Нужно прислать фото одним изображением"
	textAskWishLink   = "Пришлите ссылку на желание"
	textConfirmAdd    = "Добавить желание в Вишлист?"
	textWishAdded     = "Успешно добавлено!"
	textWishDeleted   = "Успешно удалено!"
	textNoWishlist    = "Вишлиста ещё нет! Создать?"
	textChooseWish    = "Выберите номер желания"
	textChooseWishDel = "Выберите номер желания, которое хотите удалить"
	textNoSuchWish    = "Желания под таким номером не существует!"

	textAskContact       = "Пришлите контакт пользователя, которого хотите добавить в друзья"
	textContactExpected  = "Нужно прислать контакт пользователя"
	textNotRegistered    = "Данный пользователь ещё не зарегистрировался"
	textSelfRequest      = "Нельзя отправить заявку самому себе!"
	textRequestConflict  = "Запрос уже существует или вы уже друзья"
	textRequestSent      = "Запрос отправлен!"
	textRequestAccepted  = "Заявка принята!"
	textRequestRejected  = "Заявка отклонена!"
	textNoFriends        = "Друзей нет!"
	textNoRequests       = "Заявок нет!"
	textNoSuchFriend     = "Друга под таким номером не существует!"
	textNoSuchRequest    = "Заявки под таким номером не существует!"
	textFriendDeleted    = "%s удален из друзей!"
	textChooseFriendDel  = "Выберите номер друга, которого хотите удалить"
	textChooseFriendWL   = "Выберите номер друга, Вишлист которого хотите посмотреть"
	textChooseRequest    = "Выберите номер заявки, которую хотите %s"
	textFriendNoWishlist = "У друга еще нет Вишлиста!"

	headerWishlist = "Вишлист"
	headerFriends  = "Друзья"
	headerRequests = "Входящие заявки"
)

func menuKeyboard() *Keyboard {
	return columnKeyboard(labelWishlist, labelFriends, labelMenu)
}

func wishlistKeyboard() *Keyboard {
	return columnKeyboard(labelAddWish, labelDeleteWish, labelViewWishlist, labelMenu)
}

func friendsKeyboard() *Keyboard {
	return columnKeyboard(
		labelAddFriend, labelFriendWishlist, labelViewRequests,
		labelDeleteFriend, labelViewFriends, labelMenu,
	)
}

func columnKeyboard(labels ...string) *Keyboard {
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{label})
	}
	return &Keyboard{Rows: rows}
}

func rowKeyboard(labels ...string) *Keyboard {
	return &Keyboard{Rows: [][]string{labels}}
}

func numberedKeyboard(n int) *Keyboard {
	return &Keyboard{Numbered: n, Cancel: labelCancel}
}

// matches reports whether the input equals the label, ignoring case and
// surrounding whitespace.
func matches(text, label string) bool {
	return strings.EqualFold(strings.TrimSpace(text), label)
}

func listText(header string, lines string) string {
	return fmt.Sprintf("%s\n%s\n%s", header, strings.Repeat("-", 50), lines)
}

func wishLines(items []storage.WishItem) string {
	var b strings.Builder
	for i, item := range items {
		if item.Price == nil {
			fmt.Fprintf(&b, "%d) %s |  \n", i+1, item.Name)
		} else {
			fmt.Fprintf(&b, "%d) %s | %d\n", i+1, item.Name, *item.Price)
		}
	}
	return b.String()
}

func userLines(users []storage.User) string {
	var b strings.Builder
	for i, u := range users {
		fmt.Fprintf(&b, "%d) %s | %d\n", i+1, u.Name, u.TelegramID)
	}
	return b.String()
}

// wishDetail renders the full item card. The photo and link travel as
// separate reply fields so the transport can attach them natively.
func wishDetail(item storage.WishItem) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Название: %s\n", item.Name)
	if item.Price != nil {
		fmt.Fprintf(&b, "Цена: %d\n\n", *item.Price)
	}
	if item.Description != nil {
		fmt.Fprintf(&b, "Описание: %s\n", *item.Description)
	}
	r := Reply{Text: b.String()}
	if item.PhotoID != nil {
		r.PhotoID = *item.PhotoID
	}
	if item.URL != nil {
		r.LinkURL = *item.URL
		r.LinkText = labelLink
	}
	if r.LinkURL == "" {
		r.Keyboard = menuKeyboard()
	}
	return r
}
