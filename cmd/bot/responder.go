package main

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// interactionResponder answers a single interaction. Replies are ephemeral.
type interactionResponder struct {
	s *discordgo.Session
	i *discordgo.Interaction

	// deferred is set once the interaction has been acknowledged.
	deferred bool

	// replied is set once the actor has received an answer.
	replied bool
}

func newInteractionResponder(s *discordgo.Session, i *discordgo.Interaction) *interactionResponder {
	return &interactionResponder{
		s: s,
		i: i,
	}
}

func (r *interactionResponder) Defer(ctx context.Context) error {
	if r.deferred {
		return nil
	}

	if err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx)); err != nil {
		return err
	}

	r.deferred = true
	return nil
}

func (r *interactionResponder) DeferUpdate(ctx context.Context) error {
	if r.deferred {
		return nil
	}

	if err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx)); err != nil {
		return err
	}

	r.deferred = true
	r.replied = true
	return nil
}

func (r *interactionResponder) Reply(ctx context.Context, content string) error {
	var err error
	switch {
	case r.replied:
		// The original response is used up, follow up instead.
		_, err = r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx))
	case r.deferred:
		_, err = r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
			Content: &content,
		}, discordgo.WithContext(ctx))
	default:
		err = r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
		r.deferred = err == nil
	}
	if err != nil {
		return err
	}

	r.replied = true
	return nil
}

func (r *interactionResponder) Replied() bool {
	return r.replied
}
