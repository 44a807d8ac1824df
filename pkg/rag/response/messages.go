package response

// User-facing canned messages.
const (
	// NotFoundMessage is returned when no source produced a passage.
	NotFoundMessage = "🤔 Hmm... não encontrei nada sobre isso nos meus arquivos. Mas já registrei sua dúvida! 😉"

	// IndexesMissingMessage tells the operator the corpora must be (re)provisioned.
	IndexesMissingMessage = "⚠️ Os índices vetoriais ainda não foram carregados. " +
		"Execute o indexador para as bases `faq_index`, `legal_index` e `planos_index` e reinicie o serviço."

	// UnavailableMessage is returned when the completion model could not answer.
	UnavailableMessage = "😥 Desculpe, não consegui elaborar uma resposta agora. " +
		"Sua dúvida foi registrada; tente novamente em instantes ou procure a Coordenação de Estágio."
)
