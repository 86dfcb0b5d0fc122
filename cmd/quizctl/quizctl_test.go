package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-trainer/internal/db"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
	syncx "github.com/mind-engage/mindengage-trainer/internal/sync"
)

const passage = "顧客の課題を理解することが営業の基本です。" +
	"ヒアリングでは顧客のニーズを丁寧に確認します。" +
	"信頼を得るためには提案の質を高める必要があります。" +
	"顧客との関係構築は長期的な成約に繋がります。"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, passage, "generate", "--seed", "5", "--json")
	require.NoError(t, err)
	var items []quizgen.PreviewItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 5)
	assert.Equal(t, quiz.TypeChoice, items[0].Question.Type)
	assert.Equal(t, 30, items[4].Question.MaxScore)
}

func TestGenerateRejectsShortPassage(t *testing.T) {
	_, err := run(t, "短すぎる", "generate")
	var ve *quiz.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cret")))
}

func TestLegacyTitle(t *testing.T) {
	q := quiz.Question{Ordinal: 4, MaxScore: 25, Title: "理解度確認"}
	assert.Equal(t, "[セット0123abcd] 問4/25点: 理解度確認", legacyTitle("0123abcd-ffff", q))
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trainer.db")
	h, err := db.Open(ctx, db.DriverSQLite, path)
	require.NoError(t, err)
	repo := syncx.NewEventRepo(h)
	for _, typ := range []string{syncx.TypeQuestionSetCreated, syncx.TypeTestCompleted, syncx.TypeTestCompleted} {
		e, err := syncx.NewEvent(typ, "set-1", map[string]any{"user_id": "u1"})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e))
	}
	require.NoError(t, h.Close())

	out, err := run(t, "", "events", "--db-driver", "sqlite", "--db", path, "--type", syncx.TypeTestCompleted, "--after", "0")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var e syncx.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, syncx.TypeTestCompleted, e.Type)
	assert.Equal(t, "set-1", e.Key)
	assert.JSONEq(t, `{"user_id":"u1"}`, e.DataJSON)
}
