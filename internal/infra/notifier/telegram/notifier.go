// Package telegram delivers transaction notifications to wallet owners as
// Telegram messages via the telego bot API client.
package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/Oscardkyou/CryptoWalletMonitorBot/internal/txmonitor"
)

// messageSender is the slice of the telego bot API the notifier uses.
// *telego.Bot satisfies it.
type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// notifier implements the monitor's notification port on Telegram.
type notifier struct {
	bot messageSender
}

// Ensure notifier implements the notifier port at compile time.
var _ txmonitor.TransactionNotifier = (*notifier)(nil)

// NewNotifier creates a Telegram transaction notifier.
func NewNotifier(bot messageSender) *notifier {
	return &notifier{bot: bot}
}

// NotifyTransaction implements the txmonitor.TransactionNotifier interface.
//
// The wallet owner id doubles as the Telegram chat id. The message carries a
// formatted summary and an inline button linking to the chain's public
// explorer page for the transaction.
func (n *notifier) NotifyTransaction(ctx context.Context, wallet txmonitor.Wallet, tx txmonitor.Transaction) error {
	params := &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: wallet.OwnerID},
		Text:      formatTransactionMessage(wallet, tx),
		ParseMode: telego.ModeMarkdown,
	}

	if link := explorerTransactionURL(wallet.Chain, tx.Hash); link != "" {
		params.ReplyMarkup = tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("View Transaction").WithURL(link),
			),
		)
	}

	if _, err := n.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	return nil
}
