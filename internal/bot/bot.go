package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-notify/internal/config"
	"salon-notify/internal/normalize"
	"salon-notify/internal/repository"
	"salon-notify/internal/service"
)

const (
	btnSendPhone  = "📞 Отправить номер"
	btnBook       = "📅 Записаться"
	btnMyBookings = "📋 Мои записи"

	actionBook       = "book"
	actionMyBookings = "my_bookings"
)

var (
	phoneTextRe = regexp.MustCompile(`^[\d\s\+\-\(\)]{10,18}$`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

// Bot is the Telegram front end: registration, booking lists and the
// outbound message channel used by the dispatcher.
type Bot struct {
	api      *tgbotapi.BotAPI
	userRepo *repository.UserRepository
	bookings *repository.BookingRepository
	limiter  *service.RateLimiter
	config   *config.Config
}

func New(token string, userRepo *repository.UserRepository, bookings *repository.BookingRepository, limiter *service.RateLimiter, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		userRepo: userRepo,
		bookings: bookings,
		limiter:  limiter,
		config:   cfg,
	}, nil
}

// Send implements service.Channel.
func (b *Bot) Send(ctx context.Context, recipientID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(recipientID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if msg.Contact != nil {
		return b.registerPhone(ctx, msg, msg.Contact.PhoneNumber)
	}

	switch msg.Text {
	case btnBook:
		return b.handleBookButton(msg)
	case btnMyBookings:
		if !b.limiter.TryConsume(msg.From.ID, actionMyBookings) {
			return b.sendText(msg.Chat.ID, "⏳ Не более 2 нажатий в минуту. Подождите немного.")
		}
		return b.handleMyBookings(ctx, msg)
	}

	if phoneTextRe.MatchString(strings.TrimSpace(msg.Text)) {
		return b.registerPhone(ctx, msg, msg.Text)
	}

	return b.sendText(msg.Chat.ID, "Я не понял сообщение. Наберите /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "my_bookings":
		return b.handleMyBookings(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	default:
		return b.sendText(msg.Chat.ID, "Неизвестная команда. Наберите /help.")
	}
}

func (b *Bot) handleBookButton(msg *tgbotapi.Message) error {
	if !b.limiter.TryConsume(msg.From.ID, actionBook) {
		return b.sendText(msg.Chat.ID, "⏳ Не более 2 нажатий в минуту. Подождите немного.")
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, "🔗 Записаться на процедуру:")
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📅 Открыть запись", b.config.BookingURL),
		),
	)
	_, err := b.api.Send(reply)
	return err
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID,
		"📖 Доступные команды:\n\n"+
			"/start - Начать работу с ботом\n"+
			"/my_bookings - Показать мои записи\n"+
			"/help - Показать эту справку\n\n"+
			"Бот автоматически отправляет уведомления о:\n"+
			"• Создании записи\n"+
			"• Изменении записи\n"+
			"• Отмене записи\n"+
			"• После визита\n"+
			"• Напоминаниях о записи")
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func registerKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(btnSendPhone)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBook),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.userRepo.UpsertFromTelegram(ctx, msg.From.ID)
	if err != nil {
		return err
	}

	if user.Registered() {
		if err := b.sendWithKeyboard(msg.Chat.ID,
			"👋 Вы уже зарегистрированы!\n\nИспользуйте кнопки меню или команды.",
			mainKeyboard()); err != nil {
			return err
		}
		return b.handleMyBookings(ctx, msg)
	}

	return b.sendWithKeyboard(msg.Chat.ID,
		fmt.Sprintf("👋 Здравствуйте! Я бот для уведомлений о записях в салоне %s.\n\n"+
			"Для регистрации нажмите кнопку ниже или введите номер (например 89520000000):",
			b.config.CompanyName),
		registerKeyboard())
}

func (b *Bot) registerPhone(ctx context.Context, msg *tgbotapi.Message, raw string) error {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) < 10 || len(digits) > 11 {
		return b.sendText(msg.Chat.ID, "📱 Введите номер в формате: 89520000000 или +7 952 000 0000")
	}
	phone := normalize.Phone(raw)

	if _, err := b.userRepo.SetPhone(ctx, msg.From.ID, phone); err != nil {
		log.Printf("register phone: %v", err)
		return b.sendText(msg.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
	}

	if err := b.sendWithKeyboard(msg.Chat.ID,
		fmt.Sprintf("✅ Номер телефона сохранён: %s\n\n🔔 Уведомления подключены!", phone),
		mainKeyboard()); err != nil {
		return err
	}
	// Existing bookings for this phone appear on the next sync cycle.
	return b.handleMyBookings(ctx, msg)
}

func (b *Bot) handleMyBookings(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.userRepo.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ Вы не зарегистрированы. Используйте /start для регистрации.")
	}

	bookings, err := b.bookings.ListActiveForUser(ctx, user.ID)
	if err != nil {
		log.Printf("list bookings: %v", err)
		return b.sendText(msg.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
	}
	if len(bookings) == 0 {
		return b.sendText(msg.Chat.ID, "📅 У вас пока нет активных записей.")
	}

	var sb strings.Builder
	sb.WriteString("📅 Ваши записи:\n\n")
	for _, bk := range bookings {
		fmt.Fprintf(&sb, "🎯 %s\n", bk.Service)
		fmt.Fprintf(&sb, "📅 Дата: %s\n", bk.Date)
		fmt.Fprintf(&sb, "⏰ Время: %s\n", bk.Time)
		fmt.Fprintf(&sb, "👤 Мастер: %s\n", bk.Staff)
		if bk.VisitLabel != "" {
			fmt.Fprintf(&sb, "📌 %s\n", bk.VisitLabel)
		}
		fmt.Fprintf(&sb, "📍 Адрес: %s\n", b.config.CompanyAddress)
		if bk.ReferenceLink != "" {
			fmt.Fprintf(&sb, "🔗 %s\n", bk.ReferenceLink)
		}
		sb.WriteString("\n")
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}
