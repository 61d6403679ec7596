package sqlinline

const QInsertUser = `--sql 552de847-f4cc-4d32-9b6c-fd42ea0b7d95
insert into users (id, name, email, password_hash, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, now(), now())
returning id, name, email, password_hash, created_at, updated_at;
`

const QSelectUserByEmail = `--sql d41f1422-13cf-4058-8bf1-ddc884cab0c3
select id, name, email, password_hash, created_at, updated_at
from users
where email = $1::text
limit 1;
`

const QSelectUserByID = `--sql 1b323de7-6f3c-487e-b50f-0424e24e3a1a
select id, name, email, password_hash, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`
