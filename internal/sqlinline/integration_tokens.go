package sqlinline

const QSelectIntegrationToken = `--sql bb7aa6ad-7b77-4d30-bbb3-8ba4cb874afd
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 5278cc34-f258-47b0-8e93-12d471b8235e
insert into integration_tokens (provider, token, created_at, updated_at)
values ($1::text, $2::text, now(), now())
on conflict (provider) do update set
    token = excluded.token,
    updated_at = now();
`
