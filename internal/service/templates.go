package service

import (
	"fmt"
	"html"
	"strings"

	"salon-notify/internal/model"
)

// TemplateLinks holds the external URLs substituted into message texts.
type TemplateLinks struct {
	BookingURL string
	ReviewURL  string
	GroupURL   string
}

// renderMessage builds the HTML message body for a notification type.
// All free-text booking and company fields are escaped; returns "" for
// an unknown type.
func renderMessage(typ string, booking *model.Booking, company *model.Company, links TemplateLinks) string {
	e := func(s string) string { return html.EscapeString(strings.TrimSpace(s)) }
	var b strings.Builder

	details := func(withStaff bool) {
		fmt.Fprintf(&b, "🎯 Услуга: %s\n", e(booking.Service))
		fmt.Fprintf(&b, "📅 Дата: %s\n", e(booking.Date))
		fmt.Fprintf(&b, "⏰ Время: %s\n", e(booking.Time))
		if withStaff {
			fmt.Fprintf(&b, "👤 Мастер: %s\n", e(booking.Staff))
		}
		fmt.Fprintf(&b, "📍 Адрес: %s\n", e(company.Address))
	}
	signature := func() {
		fmt.Fprintf(&b, "\n✨ Салон «%s»", e(company.Name))
	}

	switch typ {
	case model.NotifyCreated:
		b.WriteString("✅ <b>Вы записаны!</b>\n\n")
		details(true)
		if booking.ReferenceLink != "" {
			fmt.Fprintf(&b, "\n🔗 Посмотреть запись: %s\n", e(booking.ReferenceLink))
		}
		signature()

	case model.NotifyChanged:
		b.WriteString("✏️ <b>Запись обновлена</b>\n\n")
		details(true)
		signature()

	case model.NotifyCanceled:
		b.WriteString("❌ <b>Запись отменена или удалена</b>\n\n")
		details(false)
		fmt.Fprintf(&b, "\n💬 Для новой записи свяжитесь с салоном «%s»", e(company.Name))

	case model.NotifyDayBefore:
		b.WriteString("📅 <b>Напоминание</b>\n\nЗавтра вас ждут в салоне!\n\n")
		details(true)
		signature()

	case model.NotifyReminder:
		b.WriteString("⏰ <b>Напоминание</b>\n\nСегодня у вас запись:\n\n")
		fmt.Fprintf(&b, "🎯 %s\n", e(booking.Service))
		fmt.Fprintf(&b, "👤 Мастер: %s\n", e(booking.Staff))
		fmt.Fprintf(&b, "📍 Адрес: %s\n", e(company.Address))
		b.WriteString("\nЖдём вас! ✨")

	case model.NotifyConfirmation:
		b.WriteString("📅 <b>Подтверждение записи</b>\n\nВы записаны на:\n\n")
		details(true)
		if booking.ReferenceLink != "" {
			fmt.Fprintf(&b, "\n🔗 Подтвердите запись: %s\n", e(booking.ReferenceLink))
		}
		signature()

	case model.NotifyAfterVisit:
		b.WriteString("🙏 <b>Спасибо за посещение!</b>\n\nБудем рады видеть вас снова ✨\n")
		if links.ReviewURL != "" {
			fmt.Fprintf(&b, "\n📝 <b>Оставьте отзыв</b> — нам будет приятно:\n%s\n", e(links.ReviewURL))
		}
		if links.GroupURL != "" {
			fmt.Fprintf(&b, "\n💙 Мы в соцсетях:\n%s\n", e(links.GroupURL))
		}
		signature()

	case model.NotifyRebook14:
		b.WriteString("💅 <b>Пора обновить маникюр?</b>\n\nПрошло две недели с вашего визита — самое время записаться снова!\n")
		if links.BookingURL != "" {
			fmt.Fprintf(&b, "\n🔗 Записаться: %s\n", e(links.BookingURL))
		}
		signature()

	default:
		return ""
	}

	return b.String()
}
