package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// messageKind tags the content of a source message so the copy primitive can
// pick the matching outbound send.
type messageKind int

const (
	kindText messageKind = iota
	kindPhoto
	kindVideo
	kindDocument
	kindAudio
	kindVoice
	kindVideoNote
	kindSticker
	kindPoll
	kindOther
)

func classify(msg *tgbotapi.Message) messageKind {
	switch {
	case msg.Text != "":
		return kindText
	case len(msg.Photo) > 0:
		return kindPhoto
	case msg.Video != nil:
		return kindVideo
	case msg.Document != nil:
		return kindDocument
	case msg.Audio != nil:
		return kindAudio
	case msg.Voice != nil:
		return kindVoice
	case msg.VideoNote != nil:
		return kindVideoNote
	case msg.Sticker != nil:
		return kindSticker
	case msg.Poll != nil:
		return kindPoll
	default:
		return kindOther
	}
}

// copyMessageTo re-sends the source message to one recipient, preserving the
// caption where the kind carries one. Polls cannot be copied, so they and
// any unrecognized kind fall back to a platform forward.
func (b *Bot) copyMessageTo(userID int64, msg *tgbotapi.Message) error {
	var out tgbotapi.Chattable

	switch classify(msg) {
	case kindText:
		out = tgbotapi.NewMessage(userID, msg.Text)
	case kindPhoto:
		photo := tgbotapi.NewPhoto(userID, tgbotapi.FileID(msg.Photo[len(msg.Photo)-1].FileID))
		photo.Caption = msg.Caption
		out = photo
	case kindVideo:
		video := tgbotapi.NewVideo(userID, tgbotapi.FileID(msg.Video.FileID))
		video.Caption = msg.Caption
		out = video
	case kindDocument:
		doc := tgbotapi.NewDocument(userID, tgbotapi.FileID(msg.Document.FileID))
		doc.Caption = msg.Caption
		out = doc
	case kindAudio:
		audio := tgbotapi.NewAudio(userID, tgbotapi.FileID(msg.Audio.FileID))
		audio.Caption = msg.Caption
		out = audio
	case kindVoice:
		voice := tgbotapi.NewVoice(userID, tgbotapi.FileID(msg.Voice.FileID))
		voice.Caption = msg.Caption
		out = voice
	case kindVideoNote:
		out = tgbotapi.NewVideoNote(userID, msg.VideoNote.Length, tgbotapi.FileID(msg.VideoNote.FileID))
	case kindSticker:
		out = tgbotapi.NewSticker(userID, tgbotapi.FileID(msg.Sticker.FileID))
	default:
		out = tgbotapi.NewForward(userID, msg.Chat.ID, msg.MessageID)
	}

	_, err := b.api.Send(out)
	return err
}

// fanOut applies send to every recipient exactly once. One blocked or
// deactivated recipient never aborts the rest; the tally is the only result
// and nothing is retried.
func fanOut(recipients []int64, send func(int64) error) (success, fail int) {
	for _, id := range recipients {
		if err := send(id); err != nil {
			fail++
		} else {
			success++
		}
	}
	return success, fail
}

// sendCopy wraps copyMessageTo with failure logging for fan-out use.
func (b *Bot) sendCopy(msg *tgbotapi.Message) func(int64) error {
	return func(userID int64) error {
		if err := b.copyMessageTo(userID, msg); err != nil {
			b.logger.Warn("copy message", zap.Int64("UserID", userID), zap.Error(err))
			return err
		}
		return nil
	}
}
